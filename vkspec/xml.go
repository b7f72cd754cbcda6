/*
Copyright 2025 The goARRG Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package vkspec

import (
	_ "embed"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/tidwall/gjson"
	"goarrg.com/debug"
)

//go:embed exceptions.json
var exceptionsJSON []byte

// skipPlatforms lists registry platforms we refuse to generate for, along
// with every extension tied to them.
func skipPlatforms() map[string]bool {
	skip := map[string]bool{}
	gjson.GetBytes(exceptionsJSON, "platforms.skip").ForEach(func(_, v gjson.Result) bool {
		skip[v.String()] = true
		return true
	})
	return skip
}

// Parse reads vk.xml and returns the registry model. Elements and attributes
// we do not understand are ignored, and required names the registry never
// declares stay unresolved until the generator skips them.
func Parse(r io.Reader) (*Registry, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, debug.ErrorWrapf(err, "Failed to parse registry xml")
	}
	root := xmlquery.FindOne(doc, "/registry")
	if root == nil {
		return nil, debug.Errorf("Missing <registry> root element")
	}

	reg := &Registry{}
	skip := skipPlatforms()

	for node := root.FirstChild; node != nil; node = node.NextSibling {
		if node.Type != xmlquery.ElementNode {
			continue
		}
		switch node.Data {
		case "platforms":
			parsePlatforms(reg, node, skip)
		case "tags":
			parseTags(reg, node)
		case "types":
			parseTypes(reg, node)
		case "enums":
			parseEnums(reg, node)
		case "commands":
			parseCommands(reg, node)
		case "feature":
			parseFeature(reg, node)
		case "extensions":
			parseExtensions(reg, node, skip)
		}
	}

	reg.buildIndex()
	return reg, nil
}

func elements(parent *xmlquery.Node, name string) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == name {
			out = append(out, c)
		}
	}
	return out
}

func attr(n *xmlquery.Node, name string) string {
	return strings.TrimSpace(n.SelectAttr(name))
}

func parsePlatforms(reg *Registry, node *xmlquery.Node, skip map[string]bool) {
	for _, p := range elements(node, "platform") {
		platform := Platform{Name: attr(p, "name"), Protect: attr(p, "protect")}
		if skip[platform.Name] {
			continue
		}
		reg.Platforms = append(reg.Platforms, platform)
	}
}

func parseTags(reg *Registry, node *xmlquery.Node) {
	for _, t := range elements(node, "tag") {
		reg.Tags = append(reg.Tags, Tag{
			Name:    attr(t, "name"),
			Author:  attr(t, "author"),
			Contact: attr(t, "contact"),
		})
	}
}

// parseTypeNamePair reconstructs a C declaration that vk.xml splits over
// text and element nodes: "const <type>void</type>* <name>pNext</name>".
// The <name> element terminates the type part, a <comment> element (or the
// end of the children) terminates the name part. Array specifiers follow the
// name as "[<enum>VK_LUID_SIZE</enum>]" and land in both cName and
// arrayEnum.
func parseTypeNamePair(n *xmlquery.Node) (cType, typeName, cName, name, arrayEnum string) {
	c := n.FirstChild
	for ; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			if c.Data == "name" {
				break
			}
			if c.Data == "type" {
				typeName = c.InnerText()
			}
			cType += c.InnerText()
		} else if c.Type == xmlquery.TextNode {
			cType += c.Data
		}
	}
	for ; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			if c.Data == "comment" {
				break
			}
			if c.Data == "enum" {
				arrayEnum = c.InnerText()
			}
			if c.Data == "name" {
				name = c.InnerText()
			}
			cName += c.InnerText()
		} else if c.Type == xmlquery.TextNode {
			cName += c.Data
		}
	}
	cType = strings.TrimSpace(cType)
	typeName = strings.TrimSpace(typeName)
	cName = strings.TrimSpace(cName)
	name = strings.TrimSpace(name)
	arrayEnum = strings.TrimSpace(arrayEnum)
	return cType, typeName, cName, name, arrayEnum
}

func parseMember(n *xmlquery.Node) Param {
	var m Param
	m.CType, m.TypeName, m.CName, m.Name, m.ArrayEnum = parseTypeNamePair(n)
	m.Values = attr(n, "values")
	m.Optional = attr(n, "optional")
	m.Len = attr(n, "len")
	return m
}

// funcPointerReturnType extracts T from "typedef T (VKAPI_PTR *".
func funcPointerReturnType(text string) string {
	s := strings.TrimPrefix(text, "typedef ")
	if i := strings.Index(s, "(VKAPI_PTR *"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// parseFuncPointerParams splits the re-serialized parameter list of a
// funcpointer declaration. The string starts with ")(" and ends with ");",
// parameters are comma separated and the last space splits type from name.
// The semantic type sits inside a literal "<type>" tag pair.
func parseFuncPointerParams(fp *FuncPointer, paramString string) {
	s := strings.ReplaceAll(paramString, ")(", "")
	s = strings.ReplaceAll(s, ");", "")
	for _, param := range strings.Split(s, ",") {
		param = strings.TrimSpace(param)
		if param == "" || param == "void" {
			continue
		}
		lastSpace := strings.LastIndex(param, " ")
		if lastSpace < 0 {
			continue
		}
		pType := strings.TrimSpace(param[:lastSpace])
		pName := strings.TrimSpace(param[lastSpace:])

		var typeName string
		if beg := strings.Index(pType, "<type>"); beg >= 0 {
			if end := strings.Index(pType, "</type>"); end > beg {
				typeName = pType[beg+len("<type>") : end]
			}
		}
		cType := strings.ReplaceAll(pType, "<type>", "")
		cType = strings.ReplaceAll(cType, "</type>", "")

		fp.Params = append(fp.Params, Param{
			CType:    cType,
			TypeName: typeName,
			CName:    pName,
			Name:     pName,
		})
	}
}

func parseFuncPointer(t *Type, node *xmlquery.Node) {
	first := node.FirstChild
	if first == nil || first.Type != xmlquery.TextNode {
		return
	}
	fp := &FuncPointer{ReturnType: funcPointerReturnType(first.Data)}

	nameNode := first.NextSibling
	if nameNode == nil || nameNode.Type != xmlquery.ElementNode {
		return
	}
	t.Name = nameNode.InnerText()

	// The parameter declarations wrap only the bare type in <type> tags, so
	// "const <type>void</type>* pUserData" parses as three sibling nodes.
	// Re-serialize the whole list and split it by hand.
	var paramString strings.Builder
	for c := nameNode.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			paramString.WriteString("<" + c.Data + ">" + c.InnerText() + "</" + c.Data + ">")
		} else if c.Type == xmlquery.TextNode {
			paramString.WriteString(c.Data)
		}
	}
	parseFuncPointerParams(fp, paramString.String())
	t.FuncPointer = fp
}

func parseVerbatim(t *Type, node *xmlquery.Node) {
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			switch c.Data {
			case "name":
				t.Name = c.InnerText()
			case "type":
				t.TypeName = c.InnerText()
			}
			if len(t.Verbatim) > 0 && t.Verbatim[len(t.Verbatim)-1] != ' ' {
				t.Verbatim += " "
			}
			t.Verbatim += c.InnerText()
		} else if c.Type == xmlquery.TextNode {
			t.Verbatim += c.Data
		}
	}
}

func parseTypes(reg *Registry, node *xmlquery.Node) {
	for _, tn := range elements(node, "type") {
		t := Type{
			Name:      attr(tn, "name"),
			Category:  Category(attr(tn, "category")),
			Alias:     attr(tn, "alias"),
			Requires:  attr(tn, "requires"),
			Bitvalues: attr(tn, "bitvalues"),
			Parent:    attr(tn, "parent"),
		}

		switch t.Category {
		case CategoryFuncPointer:
			parseFuncPointer(&t, tn)
		case CategoryStruct, CategoryUnion:
			for _, mn := range elements(tn, "member") {
				t.Members = append(t.Members, parseMember(mn))
			}
		case CategoryDefine, CategoryBaseType:
			parseVerbatim(&t, tn)
		case CategoryBitmask, CategoryHandle:
			for c := tn.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != xmlquery.ElementNode {
					continue
				}
				switch c.Data {
				case "type":
					t.TypeName = c.InnerText()
				case "name":
					t.Name = c.InnerText()
				}
			}
		}

		reg.Types = append(reg.Types, t)
	}
}

func parseEnums(reg *Registry, node *xmlquery.Node) {
	group := EnumGroup{Name: attr(node, "name"), Kind: attr(node, "type")}

	for _, en := range elements(node, "enum") {
		v := EnumValue{
			Name:   attr(en, "name"),
			Alias:  attr(en, "alias"),
			Value:  attr(en, "value"),
			BitPos: attr(en, "bitpos"),
		}
		if group.Kind == "" {
			// Constants blocks become one single-value group per constant,
			// keyed by the constant's own name, so lookups by constant name
			// work the same as lookups by group name.
			reg.Enums = append(reg.Enums, EnumGroup{Name: v.Name, Values: []EnumValue{v}})
		} else {
			group.Values = append(group.Values, v)
		}
	}

	if group.Kind != "" {
		reg.Enums = append(reg.Enums, group)
	}
}

func parseCommand(n *xmlquery.Node) Command {
	var cmd Command
	cmd.SuccessCodes = attr(n, "successcodes")
	cmd.ErrorCodes = attr(n, "errorcodes")

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "proto":
			_, cmd.ReturnType, _, cmd.Name, _ = parseTypeNamePair(c)
		case "param":
			p := parseMember(c)
			p.ExternSync = attr(c, "externsync")
			cmd.Params = append(cmd.Params, p)
		}
	}

	// Alias commands carry name/alias attributes and no <proto>.
	if name := attr(n, "name"); name != "" {
		cmd.Name = name
	}
	cmd.Alias = attr(n, "alias")
	return cmd
}

func parseCommands(reg *Registry, node *xmlquery.Node) {
	for _, cn := range elements(node, "command") {
		reg.Commands = append(reg.Commands, parseCommand(cn))
	}
}

func parseRequire(n *xmlquery.Node) Require {
	req := Require{
		Feature:   attr(n, "feature"),
		Extension: attr(n, "extension"),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "type":
			req.Types = append(req.Types, attr(c, "name"))
		case "enum":
			req.Enums = append(req.Enums, RequireEnum{
				Name:      attr(c, "name"),
				Alias:     attr(c, "alias"),
				Value:     attr(c, "value"),
				Extends:   attr(c, "extends"),
				BitPos:    attr(c, "bitpos"),
				ExtNumber: attr(c, "extnumber"),
				Offset:    attr(c, "offset"),
				Dir:       attr(c, "dir"),
			})
		case "command":
			req.Commands = append(req.Commands, attr(c, "name"))
		}
	}
	return req
}

func parseFeature(reg *Registry, node *xmlquery.Node) {
	f := Feature{
		API:    attr(node, "api"),
		Name:   attr(node, "name"),
		Number: attr(node, "number"),
	}
	for _, rn := range elements(node, "require") {
		f.Requires = append(f.Requires, parseRequire(rn))
	}
	reg.Features = append(reg.Features, f)
}

func parseExtensions(reg *Registry, node *xmlquery.Node, skip map[string]bool) {
	for _, en := range elements(node, "extension") {
		e := Extension{
			Name:         attr(en, "name"),
			Number:       attr(en, "number"),
			Kind:         attr(en, "type"),
			Platform:     attr(en, "platform"),
			Supported:    attr(en, "supported"),
			PromotedTo:   attr(en, "promotedto"),
			DeprecatedBy: attr(en, "deprecatedby"),
		}
		if e.Supported == "disabled" || skip[e.Platform] {
			continue
		}
		for _, rn := range elements(en, "require") {
			e.Requires = append(e.Requires, parseRequire(rn))
		}

		reg.Extensions = append(reg.Extensions, e)

		// If an already-parsed extension is deprecated by this one, move it
		// behind us so its aliases have their targets declared first.
		for i := range reg.Extensions[:len(reg.Extensions)-1] {
			if reg.Extensions[i].DeprecatedBy == e.Name {
				deprecated := reg.Extensions[i]
				reg.Extensions = append(reg.Extensions[:i], reg.Extensions[i+1:]...)
				reg.Extensions = append(reg.Extensions, deprecated)
				break
			}
		}
	}
}
