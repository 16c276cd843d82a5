package typescript

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-crudgen/pkg/entity"
)

var (
	declPattern = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:default[ \t]+)?(?:declare[ \t]+)?(?:abstract[ \t]+)?(?:class|interface)[ \t]+([A-Za-z_$][\w$]*)[^{;]*\{`)

	// JSDoc block followed only by decorators up to the end of the text.
	leadingDocPattern = regexp.MustCompile(`(?s)/\*\*((?:[^*]|\*+[^*/])*)\*+/\s*(?:@[\w$.]+\s*(?:\((?:[^()]|\([^()]*\))*\))?\s*)*$`)

	memberPattern = regexp.MustCompile(`(?s)^((?:(?:public|private|protected|readonly|declare|override|static|accessor)\s+)*)([A-Za-z_$][\w$]*)([?!])?\s*:\s*(.+)$`)

	descriptionPattern = regexp.MustCompile("description\\s*:\\s*(?:'((?:\\\\.|[^'\\\\])*)'|\"((?:\\\\.|[^\"\\\\])*)\"|`([^`]*)`)")

	requiredFalsePattern = regexp.MustCompile(`required\s*:\s*false`)

	unescape = strings.NewReplacer(`\'`, `'`, `\"`, `"`, `\\`, `\`)
)

type decorator struct {
	name string
	args string
}

type pending struct {
	doc        string
	decorators []decorator
}

// Parse extracts every class and interface declared in src, in source order.
// Properties keep their declared order. A `?` suffix, @IsOptional,
// @ApiPropertyOptional or `required: false` in @ApiProperty make a property
// optional. Descriptions come from the decorator or the JSDoc block.
// Methods, accessors, index signatures and static members are skipped.
func Parse(src []byte) ([]entity.EntitySchema, error) {
	content := string(src)

	var entities []entity.EntitySchema
	offset := 0
	for {
		loc := declPattern.FindStringSubmatchIndex(content[offset:])
		if loc == nil {
			break
		}
		start, open := offset+loc[0], offset+loc[1]
		name := content[offset+loc[2] : offset+loc[3]]

		end, ok := closingBrace(content, open)
		if !ok {
			return nil, fmt.Errorf("typescript: body of %s is not closed", name)
		}
		entities = append(entities, entity.EntitySchema{
			Name:        name,
			Description: leadingDoc(content[:start]),
			Properties:  members(content[open:end]),
		})
		offset = end + 1
	}
	return entities, nil
}

func leadingDoc(before string) string {
	m := leadingDocPattern.FindStringSubmatch(before)
	if m == nil {
		return ""
	}
	return docText(m[1])
}

func members(body string) []entity.PropertyDescriptor {
	var props []entity.PropertyDescriptor
	var next pending
	for _, seg := range segments(body) {
		if strings.HasPrefix(seg, "/*") {
			if strings.HasPrefix(seg, "/**") {
				next.doc = docText(strings.TrimSuffix(strings.TrimPrefix(seg, "/**"), "*/"))
			}
			continue
		}
		rest := seg
		for strings.HasPrefix(rest, "@") {
			var d decorator
			d, rest = splitDecorator(rest)
			next.decorators = append(next.decorators, d)
		}
		if rest == "" {
			continue
		}
		if prop, ok := property(rest, next); ok {
			props = append(props, prop)
		}
		next = pending{}
	}
	return props
}

func property(member string, meta pending) (entity.PropertyDescriptor, bool) {
	m := memberPattern.FindStringSubmatch(member)
	if m == nil || strings.Contains(m[1], "static") {
		return entity.PropertyDescriptor{}, false
	}
	typ := strings.TrimSuffix(strings.TrimSpace(cutInitializer(m[4])), ",")
	typ = strings.Join(strings.Fields(typ), " ")
	if typ == "" {
		return entity.PropertyDescriptor{}, false
	}

	prop := entity.PropertyDescriptor{
		Name:        m[2],
		Type:        typ,
		Description: meta.doc,
		Required:    m[3] != "?",
	}
	for _, d := range meta.decorators {
		switch d.name {
		case "IsOptional":
			prop.Required = false
		case "ApiPropertyOptional", "ApiProperty":
			if d.name == "ApiPropertyOptional" || requiredFalsePattern.MatchString(d.args) {
				prop.Required = false
			}
			if desc, ok := decoratorDescription(d.args); ok {
				prop.Description = desc
			}
		}
	}
	return prop, true
}

func decoratorDescription(args string) (string, bool) {
	m := descriptionPattern.FindStringSubmatch(args)
	if m == nil {
		return "", false
	}
	for _, group := range m[1:] {
		if group != "" {
			return unescape.Replace(group), true
		}
	}
	return "", false
}

func docText(raw string) string {
	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

// splitDecorator peels the leading @Name(...) off s.
func splitDecorator(s string) (decorator, string) {
	i := 1
	for i < len(s) && (isIdentByte(s[i]) || s[i] == '.') {
		i++
	}
	d := decorator{name: s[1:i]}
	j := i
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	if j < len(s) && s[j] == '(' {
		if end, ok := matching(s, j, '(', ')'); ok {
			d.args = s[j+1 : end]
			i = end + 1
		} else {
			d.args = s[j+1:]
			i = len(s)
		}
	}
	return d, strings.TrimSpace(s[i:])
}

// cutInitializer drops a trailing `= value` from a member type.
func cutInitializer(t string) string {
	depth := 0
	for i := 0; i < len(t); i++ {
		switch c := t[i]; c {
		case '\'', '"', '`':
			i = skipString(t, i)
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}':
			depth--
		case '>':
			if i > 0 && t[i-1] == '=' {
				continue
			}
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(t) && (t[i+1] == '>' || t[i+1] == '=') {
				continue
			}
			if i > 0 && strings.IndexByte("=!<>", t[i-1]) >= 0 {
				continue
			}
			return t[:i]
		}
	}
	return t
}

// segments splits a declaration body into top-level members. Block comments
// are kept as their own segment and line comments are dropped.
func segments(body string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	depth := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '/' && i+1 < len(body) && body[i+1] == '/':
			for i+1 < len(body) && body[i+1] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < len(body) && body[i+1] == '*':
			end := strings.Index(body[i+2:], "*/")
			var comment string
			if end < 0 {
				comment, i = body[i:], len(body)
			} else {
				comment = body[i : i+2+end+2]
				i += 2 + end + 1
			}
			if depth == 0 {
				flush()
				out = append(out, comment)
			}
			continue
		case c == '\'' || c == '"' || c == '`':
			end := skipString(body, i)
			cur.WriteString(body[i : end+1])
			i = end
			continue
		case c == '{' || c == '(' || c == '[':
			depth++
		case c == '}' || c == ')' || c == ']':
			if depth > 0 {
				depth--
			}
		case (c == ';' || c == '\n') && depth == 0:
			flush()
			continue
		}
		cur.WriteByte(c)
	}
	flush()
	return out
}

// closingBrace returns the index of the brace closing the block opened just
// before open.
func closingBrace(s string, open int) (int, bool) {
	return matching(s, open-1, '{', '}')
}

// matching returns the index of the close byte balancing the open byte at
// s[at]. Strings and comments are skipped.
func matching(s string, at int, open, close byte) (int, bool) {
	depth := 0
	for i := at; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'' || c == '"' || c == '`':
			i = skipString(s, i)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return 0, false
			}
			i += 2 + end + 1
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// skipString returns the index of the quote closing the string at s[at].
func skipString(s string, at int) int {
	quote := s[at]
	for i := at + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return len(s) - 1
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
