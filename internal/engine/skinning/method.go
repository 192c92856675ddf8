package skinning

import (
	"fmt"
	"strings"
)

// Method selects where vertices are deformed.
type Method int

const (
	// MethodSoftware deforms positions and normals on the CPU.
	MethodSoftware Method = iota
	// MethodHardware publishes bone matrices for a vertex shader.
	MethodHardware
	// MethodHardwareWithoutDQ is hardware skinning with linear blending only.
	// It behaves like MethodHardware here; the shader picks the blend.
	MethodHardwareWithoutDQ
)

func (m Method) String() string {
	switch m {
	case MethodSoftware:
		return "software"
	case MethodHardware:
		return "hardware"
	case MethodHardwareWithoutDQ:
		return "hardware_without_dq"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod converts a config string to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "software", "cpu":
		return MethodSoftware, nil
	case "hardware", "gpu":
		return MethodHardware, nil
	case "hardware_without_dq":
		return MethodHardwareWithoutDQ, nil
	default:
		return 0, fmt.Errorf("unknown skinning method %q", s)
	}
}
