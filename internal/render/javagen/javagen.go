// Package javagen renders schema nodes as Java model classes using lombok.
// Inheritance edges become extends clauses, polymorphic fields become
// bounded generic type parameters, and synthesized bases become empty
// abstract classes.
package javagen

import (
	"path"
	"sort"
	"strings"

	"github.com/stoewer/go-strcase"

	"github.com/openapi2java/openapi2java/internal/emitter"
	"github.com/openapi2java/openapi2java/internal/model"
)

// Options configures class rendering.
type Options struct {
	BasePackage   string
	EnableJavadoc bool
}

// Files renders one .java file per placement in both projection trees,
// rooted under folder.
func Files(m *model.Model, folder string, opts Options) []emitter.File {
	placements := append(model.EndpointPlacements(m), model.GlobalPlacements(m)...)
	out := make([]emitter.File, 0, len(placements))
	for _, p := range placements {
		rel := path.Join(append(append([]string{folder}, p.Segments...), p.Node.Name+".java")...)
		out = append(out, emitter.File{RelPath: rel, Content: []byte(Render(p.Node, opts))})
	}
	return out
}

// Render produces the Java source for one node.
func Render(n *model.SchemaNode, opts Options) string {
	if n.Abstract {
		return renderAbstractBase(n, opts)
	}

	imports := map[string]bool{
		"import lombok.Data;":               true,
		"import lombok.NoArgsConstructor;":  true,
		"import lombok.AllArgsConstructor;": true,
	}
	if n.Parent != nil {
		imports["import lombok.EqualsAndHashCode;"] = true
	} else {
		imports["import lombok.Builder;"] = true
	}

	var generics []string
	var lines []string
	for _, f := range n.Fields {
		javaType := TypeName(&f.Type)
		if f.Type.Kind == model.KindPolymorphic && f.Type.Group != nil {
			param := "T" + strcase.UpperCamelCase(f.Name)
			generics = append(generics, param+" extends "+f.Type.Schema.Name)
			javaType = param
			var names []string
			for _, v := range f.Type.Group.Variants {
				names = append(names, v.Name)
			}
			lines = append(lines, "    // Can be one of: "+strings.Join(names, ", "))
		}
		addTypeImports(imports, javaType)
		if opts.EnableJavadoc && f.Description != "" {
			lines = append(lines, fieldJavadoc(f.Description))
		}
		line := "    private " + javaType + " " + fieldName(f.Name) + ";"
		if f.Required {
			line += " // Required"
		}
		lines = append(lines, line)
	}

	var b strings.Builder
	b.WriteString("package " + opts.BasePackage + ";\n\n")
	b.WriteString(strings.Join(sortedImports(imports), "\n") + "\n\n")
	if opts.EnableJavadoc && n.Description != "" {
		b.WriteString(classJavadoc(n.Description))
	}
	b.WriteString("@Data\n")
	if n.Parent != nil {
		b.WriteString("@EqualsAndHashCode(callSuper = true)\n")
	}
	// Plain @Builder on a subclass drops inherited fields, so only root
	// classes get it.
	if n.Parent == nil {
		b.WriteString("@Builder\n")
	}
	b.WriteString("@NoArgsConstructor\n@AllArgsConstructor\n")

	decl := "public class " + n.Name
	if len(generics) > 0 {
		decl += "<" + strings.Join(generics, ", ") + ">"
	}
	if n.Parent != nil {
		decl += " extends " + n.Parent.Name
	}
	b.WriteString(decl + " {\n")

	if len(lines) == 0 {
		if n.Parent != nil {
			b.WriteString("    // All fields inherited from " + n.Parent.Name + "\n")
		} else {
			b.WriteString("    // No fields\n")
		}
	} else {
		b.WriteString(strings.Join(lines, "\n") + "\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// renderAbstractBase emits the empty abstract class standing for a
// oneOf/anyOf alternative set.
func renderAbstractBase(n *model.SchemaNode, opts Options) string {
	var b strings.Builder
	b.WriteString("package " + opts.BasePackage + ";\n\n")
	b.WriteString("import lombok.AllArgsConstructor;\nimport lombok.Data;\nimport lombok.NoArgsConstructor;\n\n")
	b.WriteString("@Data\n@NoArgsConstructor\n@AllArgsConstructor\n")
	b.WriteString("public abstract class " + n.Name + " {\n")
	b.WriteString("    // Polymorphic base class for oneOf types\n")
	b.WriteString("    // All concrete implementations will extend this class\n")
	b.WriteString("}\n")
	return b.String()
}

// TypeName maps a TypeRef to its Java type.
func TypeName(t *model.TypeRef) string {
	switch t.Kind {
	case model.KindObject:
		return t.Schema.Name
	case model.KindPolymorphic:
		return t.Schema.Name
	case model.KindArray:
		if t.Elem == nil {
			return "List<Object>"
		}
		return "List<" + TypeName(t.Elem) + ">"
	}
	switch t.Primitive {
	case "string":
		switch t.Format {
		case "date-time":
			return "LocalDateTime"
		case "date":
			return "LocalDate"
		}
		return "String"
	case "integer":
		if t.Format == "int64" {
			return "Long"
		}
		return "Integer"
	case "number":
		return "Double"
	case "boolean":
		return "Boolean"
	}
	return "Object"
}

func addTypeImports(imports map[string]bool, javaType string) {
	if strings.Contains(javaType, "List<") {
		imports["import java.util.List;"] = true
	}
	if strings.Contains(javaType, "LocalDateTime") {
		imports["import java.time.LocalDateTime;"] = true
	} else if strings.Contains(javaType, "LocalDate") {
		imports["import java.time.LocalDate;"] = true
	}
}

func sortedImports(imports map[string]bool) []string {
	out := make([]string, 0, len(imports))
	for imp := range imports {
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}

func fieldName(name string) string {
	return strcase.LowerCamelCase(name)
}

func classJavadoc(description string) string {
	return "/**\n * " + strings.ReplaceAll(strings.TrimSpace(description), "\n", "\n * ") + "\n */\n"
}

func fieldJavadoc(description string) string {
	return "    /**\n     * " + strings.ReplaceAll(strings.TrimSpace(description), "\n", "\n     * ") + "\n     */"
}
