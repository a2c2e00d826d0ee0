package config

import (
	"bytes"
	"strings"

	"github.com/annel0/mvinventories/internal/domain"
	"gopkg.in/yaml.v3"
)

// Document дерево YAML с комментариями. Пути записываются через точку:
// "settings.debug_level", "groups.survival.worlds".
// Комментарии хранятся как head-комментарии ключей и переживают
// цикл чтение-запись.
type Document struct {
	root   *yaml.Node // всегда MappingNode
	header string
}

// NewDocument создаёт пустой документ
func NewDocument() *Document {
	return &Document{root: newMapping()}
}

// ParseDocument разбирает YAML. Пустой файл или файл из одних комментариев
// даёт пустой документ; корень, не являющийся mapping, даёт ConfigFormatError.
func ParseDocument(data []byte) (*Document, error) {
	const op = "config.parse_document"

	if len(bytes.TrimSpace(data)) == 0 {
		return NewDocument(), nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.FormatError(op, "", "некорректный YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return &Document{root: newMapping(), header: doc.HeadComment}, nil
	}

	root := doc.Content[0]
	if isNull(root) {
		return &Document{root: newMapping(), header: doc.HeadComment}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, domain.FormatError(op, "", "корень документа должен быть mapping, получено %s", kindName(root))
	}
	return &Document{root: root, header: doc.HeadComment}, nil
}

// Marshal сериализует документ вместе с заголовком и комментариями
func (d *Document) Marshal() ([]byte, error) {
	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: d.header,
		Content:     []*yaml.Node{d.root},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, domain.FormatError("config.marshal", "", "ошибка сериализации: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, domain.FormatError("config.marshal", "", "ошибка сериализации: %w", err)
	}
	return buf.Bytes(), nil
}

// Header возвращает комментарий в начале файла
func (d *Document) Header() string {
	return d.header
}

// SetHeader задаёт комментарий в начале файла
func (d *Document) SetHeader(lines ...string) {
	d.header = formatComment(lines)
}

// Has сообщает, задано ли значение по пути (null считается отсутствием)
func (d *Document) Has(path string) bool {
	_, v := d.lookup(path)
	return v != nil && !isNull(v)
}

// Get возвращает значение по пути, декодированное в базовые типы Go:
// map[string]interface{}, []interface{}, string, int, float64, bool.
func (d *Document) Get(path string) (interface{}, bool) {
	_, v := d.lookup(path)
	if v == nil || isNull(v) {
		return nil, false
	}
	var out interface{}
	if err := v.Decode(&out); err != nil {
		return nil, false
	}
	return out, true
}

// Section возвращает содержимое секции; false, если по пути не mapping.
func (d *Document) Section(path string) (map[string]interface{}, bool) {
	_, v := d.lookup(path)
	if v == nil || v.Kind != yaml.MappingNode {
		return nil, false
	}
	out := make(map[string]interface{})
	if err := v.Decode(&out); err != nil {
		return nil, false
	}
	return out, true
}

// Keys возвращает ключи секции в порядке документа.
// Пустой путь означает корень.
func (d *Document) Keys(path string) ([]string, bool) {
	v := d.root
	if path != "" {
		_, v = d.lookup(path)
	}
	if v == nil || v.Kind != yaml.MappingNode {
		return nil, false
	}
	keys := make([]string, 0, len(v.Content)/2)
	for i := 0; i+1 < len(v.Content); i += 2 {
		if isMerge(v.Content[i]) {
			continue
		}
		keys = append(keys, v.Content[i].Value)
	}
	return keys, true
}

// ScalarTexts возвращает исходный текст элементов списка скаляров
// без приведения типов: "007" остаётся "007". false, если по пути
// не список или в нём есть null, секция или вложенный список.
func (d *Document) ScalarTexts(path string) ([]string, bool) {
	_, v := d.lookup(path)
	if v == nil || v.Kind != yaml.SequenceNode {
		return nil, false
	}
	out := make([]string, 0, len(v.Content))
	for _, item := range v.Content {
		item = resolveAlias(item)
		if item.Kind != yaml.ScalarNode || isNull(item) {
			return nil, false
		}
		out = append(out, item.Value)
	}
	return out, true
}

// Set записывает значение по пути, создавая промежуточные секции.
// Промежуточное значение, не являющееся секцией, заменяется секцией.
// nil удаляет путь. Комментарий ключа сохраняется.
func (d *Document) Set(path string, value interface{}) error {
	if value == nil {
		d.Delete(path)
		return nil
	}

	parts := splitPath(path)
	if len(parts) == 0 {
		return domain.FormatError("config.set", path, "пустой путь")
	}

	var vn yaml.Node
	if err := vn.Encode(value); err != nil {
		return domain.FormatError("config.set", path, "значение не сериализуется: %w", err)
	}

	cur := d.root
	for i, part := range parts {
		last := i == len(parts)-1
		idx := findKey(cur, part)
		if idx < 0 {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: part}
			next := newMapping()
			if last {
				next = &vn
			}
			cur.Content = append(cur.Content, key, next)
			cur = next
			continue
		}
		if last {
			cur.Content[idx+1] = &vn
			return nil
		}
		next := cur.Content[idx+1]
		if next.Kind != yaml.MappingNode {
			next = newMapping()
			cur.Content[idx+1] = next
		}
		cur = next
	}
	return nil
}

// CreateSection записывает секцию целиком, заменяя прежнее содержимое
func (d *Document) CreateSection(path string, values map[string]interface{}) error {
	if values == nil {
		values = map[string]interface{}{}
	}
	return d.Set(path, values)
}

// Delete удаляет путь; отсутствие пути не является ошибкой.
// Возвращает true, если что-то было удалено.
func (d *Document) Delete(path string) bool {
	parts := splitPath(path)
	if len(parts) == 0 {
		return false
	}

	parent := d.root
	if len(parts) > 1 {
		_, parent = d.lookup(strings.Join(parts[:len(parts)-1], "."))
		if parent == nil || parent.Kind != yaml.MappingNode {
			return false
		}
	}
	idx := findKey(parent, parts[len(parts)-1])
	if idx < 0 {
		return false
	}
	parent.Content = append(parent.Content[:idx], parent.Content[idx+2:]...)
	return true
}

// SetComment задаёт комментарий над ключом. Строки без "#" получают префикс.
// Возвращает false, если пути нет.
func (d *Document) SetComment(path string, lines []string) bool {
	k, _ := d.lookup(path)
	if k == nil {
		return false
	}
	k.HeadComment = formatComment(lines)
	return true
}

// Comment возвращает комментарий над ключом
func (d *Document) Comment(path string) string {
	k, _ := d.lookup(path)
	if k == nil {
		return ""
	}
	return k.HeadComment
}

// lookup возвращает узлы ключа и значения по пути
func (d *Document) lookup(path string) (key, value *yaml.Node) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, nil
	}

	cur := d.root
	for i, part := range parts {
		cur = resolveAlias(cur)
		if cur.Kind != yaml.MappingNode {
			return nil, nil
		}
		idx := findKey(cur, part)
		if idx < 0 {
			return nil, nil
		}
		if i == len(parts)-1 {
			return cur.Content[idx], resolveAlias(cur.Content[idx+1])
		}
		cur = cur.Content[idx+1]
	}
	return nil, nil
}

func splitPath(path string) []string {
	raw := strings.Split(path, ".")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func findKey(m *yaml.Node, key string) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// isMerge сообщает, является ли ключ merge-ключом "<<"
func isMerge(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge"
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar " + n.ShortTag()
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

func formatComment(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if !strings.HasPrefix(line, "#") {
			line = "# " + line
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
