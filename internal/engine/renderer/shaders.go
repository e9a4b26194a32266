package renderer

// Positions arrive already skinned, in world space.
const skinnedVertex = `#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aColor;

uniform mat4 uViewProj;

out vec3 vColor;

void main() {
	gl_Position = uViewProj * vec4(aPosition, 1.0);
	vColor = aColor;
}
`

const colorFragment = `#version 410 core

in vec3 vColor;
out vec4 FragColor;

void main() {
	FragColor = vec4(vColor, 1.0);
}
`
