package oasdoc

// Document is a parsed OpenAPI v3 document, held as a generic ordered tree.
// The accessors below expose the handful of sections the model build cares
// about; everything else in the tree is carried but ignored.
type Document struct {
	// Name identifies the document within a run (file base name without
	// extension); output for the document is emitted under this name.
	Name string
	Root *Obj
}

func (d *Document) info() *Obj {
	obj, _ := GetObj(d.Root, "info")
	return obj
}

// Title returns info.title, or "".
func (d *Document) Title() string {
	s, _ := GetStr(d.info(), "title")
	return s
}

// Version returns info.version, or "".
func (d *Document) Version() string {
	s, _ := GetStr(d.info(), "version")
	return s
}

func (d *Document) components() *Obj {
	obj, _ := GetObj(d.Root, "components")
	return obj
}

// Schemas returns the components/schemas mapping, or nil.
func (d *Document) Schemas() *Obj {
	obj, _ := GetObj(d.components(), "schemas")
	return obj
}

// ResponseComponents returns the components/responses mapping, or nil.
func (d *Document) ResponseComponents() *Obj {
	obj, _ := GetObj(d.components(), "responses")
	return obj
}

// ParameterComponents returns the components/parameters mapping, or nil.
func (d *Document) ParameterComponents() *Obj {
	obj, _ := GetObj(d.components(), "parameters")
	return obj
}

// Paths returns the paths mapping, or nil.
func (d *Document) Paths() *Obj {
	obj, _ := GetObj(d.Root, "paths")
	return obj
}
