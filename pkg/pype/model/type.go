package model

// Type is the declared type name of a member. The builtin names are cast from
// their raw token; any other name (vtkImageData, vtkPolyData, ...) is an object
// type whose tokens are kept as-is for the executing stage to resolve.
type Type string

const (
	TypeInt   Type = "int"
	TypeStr   Type = "str"
	TypeFloat Type = "float"
	TypeBool  Type = "bool"
)

func (t Type) IsBuiltin() bool {
	switch t {
	case TypeInt, TypeStr, TypeFloat, TypeBool:
		return true
	default:
		return false
	}
}
