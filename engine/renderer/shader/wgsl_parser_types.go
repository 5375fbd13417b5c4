package shader

// wgslTypeLayout is the size and alignment of a type in a uniform buffer.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField is one struct member. location is -1 without a @location attribute.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct is one struct declaration of a module.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// fieldOffset is the placement of one struct member inside a host-shareable buffer.
type fieldOffset struct {
	name     string
	typeName string
	offset   uint64
	size     uint64
}

// varying is one user-defined inter-stage or vertex input value.
type varying struct {
	name     string
	location int
	typeName string
}

// resourceDecl is one module-scope @group/@binding declaration.
type resourceDecl struct {
	group        uint32
	binding      uint32
	addressSpace string
	name         string
	typeName     string
}

// stageReflection is everything the binding layer needs to know about one compiled stage.
type stageReflection struct {
	entry     string
	inputs    []varying
	outputs   []varying
	resources []resourceDecl
	structs   map[string]parsedStruct
	layouts   map[string]wgslTypeLayout
}
