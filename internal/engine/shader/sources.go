package shader

import _ "embed"

// SkinnedVertexShader blends up to eight bone matrices per vertex when
// uNumBones is positive and passes vertices through otherwise.
//
//go:embed skinned.vert
var SkinnedVertexShader string

// SkinnedFragmentShader is a single directional light.
//
//go:embed skinned.frag
var SkinnedFragmentShader string
