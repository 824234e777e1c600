// Package feigngen renders endpoint bindings as Spring Cloud OpenFeign
// client interfaces, grouped into one interface per tag or a single
// interface for the whole API.
package feigngen

import (
	"path"
	"sort"
	"strings"

	"github.com/stoewer/go-strcase"

	"github.com/openapi2java/openapi2java/internal/config"
	"github.com/openapi2java/openapi2java/internal/emitter"
	"github.com/openapi2java/openapi2java/internal/model"
	"github.com/openapi2java/openapi2java/internal/render/javagen"
)

// Options configures interface rendering.
type Options struct {
	BasePackage        string
	ModelPackage       string
	InterfaceSuffix    string
	GroupingStrategy   string // config.GroupingSingleClient | config.GroupingByTag
	EnableJavadoc      bool
	GenerateConfig     bool
	UseResponseEntity  bool
	OneParamPerLine    bool
	AddFeignAnnotation bool
}

// operation is one HTTP operation with its body and response bindings
// merged back together.
type operation struct {
	method, pathTemplate string
	body, response       *model.EndpointBinding
	any                  *model.EndpointBinding
}

// Files renders the client interfaces (and the optional shared
// configuration class) under folder.
func Files(m *model.Model, folder string, opts Options) []emitter.File {
	var out []emitter.File
	if opts.GroupingStrategy == config.GroupingSingleClient {
		name := m.Title
		if name == "" {
			name = "Api"
		}
		clientName := strcase.UpperCamelCase(name) + opts.InterfaceSuffix
		feignName := kebab(name)
		content := renderInterface(clientName, feignName, mergeOperations(m.Bindings), opts)
		out = append(out, emitter.File{RelPath: path.Join(folder, clientName+".java"), Content: []byte(content)})
	} else {
		tags, byTag := m.BindingsByTag()
		for _, tag := range tags {
			clientName := strcase.UpperCamelCase(tag) + opts.InterfaceSuffix
			content := renderInterface(clientName, kebab(tag), mergeOperations(byTag[tag]), opts)
			out = append(out, emitter.File{RelPath: path.Join(folder, clientName+".java"), Content: []byte(content)})
		}
	}
	if opts.GenerateConfig {
		out = append(out, emitter.File{
			RelPath: path.Join(folder, "config", "FeignConfiguration.java"),
			Content: []byte(renderConfiguration(opts.BasePackage)),
		})
	}
	return out
}

// mergeOperations folds body and response bindings of the same operation
// into one entry, preserving first-seen operation order.
func mergeOperations(bindings []*model.EndpointBinding) []*operation {
	var ops []*operation
	index := map[string]*operation{}
	for _, b := range bindings {
		key := b.Method + " " + b.Path
		op, ok := index[key]
		if !ok {
			op = &operation{method: b.Method, pathTemplate: b.Path, any: b}
			index[key] = op
			ops = append(ops, op)
		}
		switch b.Role {
		case model.RoleBody:
			if op.body == nil {
				op.body = b
			}
		case model.RoleResponse:
			if op.response == nil {
				op.response = b
			}
		}
	}
	return ops
}

func renderInterface(clientName, feignName string, ops []*operation, opts Options) string {
	imports := map[string]bool{}
	if opts.AddFeignAnnotation {
		imports["org.springframework.cloud.openfeign.FeignClient"] = true
	}
	if opts.UseResponseEntity {
		imports["org.springframework.http.ResponseEntity"] = true
	}
	imports["org.springframework.web.bind.annotation.*"] = true
	if opts.ModelPackage != "" {
		imports[opts.ModelPackage+".*"] = true
	}

	var body []string
	for _, op := range ops {
		returnType := "void"
		if op.response != nil && op.response.Schema != nil {
			returnType = javagen.TypeName(&op.response.Payload)
		}
		if opts.UseResponseEntity {
			if returnType == "void" {
				returnType = "ResponseEntity<Void>"
			} else {
				returnType = "ResponseEntity<" + returnType + ">"
			}
		}
		if strings.Contains(returnType, "List<") {
			imports["java.util.List"] = true
		}

		var params []string
		for _, p := range op.any.Parameters {
			params = append(params, paramDecl(p))
		}
		if op.body != nil {
			params = append(params, "@RequestBody "+javagen.TypeName(&op.body.Payload)+" body")
			if strings.Contains(javagen.TypeName(&op.body.Payload), "List<") {
				imports["java.util.List"] = true
			}
		}

		if opts.EnableJavadoc {
			if doc := methodJavadoc(op, returnType); doc != "" {
				body = append(body, doc)
			}
		}
		body = append(body, "    @"+mappingAnnotation(op.method)+"(\""+op.pathTemplate+"\")")
		methodName := javaMethodName(op)
		if opts.OneParamPerLine && len(params) > 0 {
			body = append(body, "    "+returnType+" "+methodName+"(")
			for i, p := range params {
				suffix := ","
				if i == len(params)-1 {
					suffix = ""
				}
				body = append(body, "        "+p+suffix)
			}
			body = append(body, "    );")
		} else {
			body = append(body, "    "+returnType+" "+methodName+"("+strings.Join(params, ", ")+");")
		}
		body = append(body, "")
	}

	var b strings.Builder
	b.WriteString("package " + opts.BasePackage + ";\n\n")
	for _, imp := range sortedKeys(imports) {
		b.WriteString("import " + imp + ";\n")
	}
	b.WriteString("\n")
	if opts.AddFeignAnnotation {
		b.WriteString("@FeignClient(name = \"" + feignName + "\", url = \"${feign.client." + feignName + ".url}\")\n")
	}
	b.WriteString("public interface " + clientName + " {\n\n")
	b.WriteString(strings.Join(body, "\n"))
	b.WriteString("}\n")
	return b.String()
}

func paramDecl(p model.Parameter) string {
	javaName := strcase.LowerCamelCase(p.Name)
	javaType := javagen.TypeName(&p.Type)
	var annotation string
	switch p.In {
	case "path":
		annotation = `@PathVariable("` + p.Name + `")`
	case "header":
		if p.Required {
			annotation = `@RequestHeader("` + p.Name + `")`
		} else {
			annotation = `@RequestHeader(value = "` + p.Name + `", required = false)`
		}
	default:
		if p.Required {
			annotation = `@RequestParam("` + p.Name + `")`
		} else {
			annotation = `@RequestParam(value = "` + p.Name + `", required = false)`
		}
	}
	return annotation + " " + javaType + " " + javaName
}

func mappingAnnotation(method string) string {
	switch method {
	case "GET":
		return "GetMapping"
	case "POST":
		return "PostMapping"
	case "PUT":
		return "PutMapping"
	case "DELETE":
		return "DeleteMapping"
	case "PATCH":
		return "PatchMapping"
	}
	return "RequestMapping"
}

func javaMethodName(op *operation) string {
	if op.any.OperationID != "" {
		return strcase.LowerCamelCase(op.any.OperationID)
	}
	return strcase.LowerCamelCase(op.any.Dir)
}

func methodJavadoc(op *operation, returnType string) string {
	b := op.any
	var lines []string
	lines = append(lines, "    /**")
	if b.Summary != "" {
		lines = append(lines, "     * "+b.Summary)
	}
	if b.Description != "" && b.Description != b.Summary {
		lines = append(lines, "     *")
		for _, line := range strings.Split(b.Description, "\n") {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, "     * "+strings.TrimSpace(line))
			}
		}
	}
	if len(b.Parameters) > 0 {
		lines = append(lines, "     *")
		for _, p := range b.Parameters {
			entry := "     * @param " + strcase.LowerCamelCase(p.Name)
			if p.Description != "" {
				entry += " " + p.Description
			}
			lines = append(lines, entry)
		}
	}
	if returnType != "void" {
		lines = append(lines, "     * @return "+returnType)
	}
	lines = append(lines, "     */")
	if len(lines) == 2 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// renderConfiguration emits the shared Feign configuration class.
func renderConfiguration(basePackage string) string {
	var b strings.Builder
	b.WriteString("package " + basePackage + ".config;\n\n")
	b.WriteString("import feign.Logger;\n")
	b.WriteString("import feign.codec.ErrorDecoder;\n")
	b.WriteString("import org.springframework.context.annotation.Bean;\n")
	b.WriteString("import org.springframework.context.annotation.Configuration;\n\n")
	b.WriteString("/**\n * Common Feign client configuration.\n */\n")
	b.WriteString("@Configuration\npublic class FeignConfiguration {\n\n")
	b.WriteString("    /**\n     * Set Feign logging level.\n     */\n")
	b.WriteString("    @Bean\n    public Logger.Level feignLoggerLevel() {\n        return Logger.Level.FULL;\n    }\n\n")
	b.WriteString("    /**\n     * Custom error decoder for Feign clients.\n     */\n")
	b.WriteString("    @Bean\n    public ErrorDecoder errorDecoder() {\n        return new ErrorDecoder.Default();\n    }\n\n")
	b.WriteString("}\n")
	return b.String()
}

func kebab(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
