package html

import (
	"fmt"
	gohtml "html"
	"strings"
	"unicode"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenComment
	TokenEOF
)

type Token struct {
	Type        TokenType
	TagName     string
	Attributes  map[string]string
	Text        string
	SelfClosing bool // tag written as <x/>
}

type Tokenizer struct {
	input string
	pos   int
}

func NewTokenizer(html string) *Tokenizer {
	return &Tokenizer{input: html, pos: 0}
}

// NextToken returns the next token. Text is returned verbatim apart from
// entity decoding; whitespace collapsing is a layout concern.
func (t *Tokenizer) NextToken() (Token, error) {
	if t.pos >= len(t.input) {
		return Token{Type: TokenEOF}, nil
	}
	if t.input[t.pos] == '<' && t.startsTag() {
		return t.readTag()
	}
	return t.readText(), nil
}

// startsTag reports whether the '<' at pos opens markup rather than being a
// literal less-than sign.
func (t *Tokenizer) startsTag() bool {
	if t.pos+1 >= len(t.input) {
		return false
	}
	c := t.input[t.pos+1]
	return c == '/' || c == '!' || c == '?' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (t *Tokenizer) readTag() (Token, error) {
	t.pos++

	if strings.HasPrefix(t.input[t.pos:], "!--") {
		t.pos += 3
		end := strings.Index(t.input[t.pos:], "-->")
		if end < 0 {
			data := t.input[t.pos:]
			t.pos = len(t.input)
			return Token{Type: TokenComment, Text: data}, nil
		}
		data := t.input[t.pos : t.pos+end]
		t.pos += end + 3
		return Token{Type: TokenComment, Text: data}, nil
	}

	// <!DOCTYPE ...> and <?xml ...?> carry nothing we keep
	if t.input[t.pos] == '!' || t.input[t.pos] == '?' {
		if err := t.skipTo('>'); err != nil {
			return Token{}, err
		}
		t.pos++
		return t.NextToken()
	}

	isEndTag := false
	if t.input[t.pos] == '/' {
		isEndTag = true
		t.pos++
	}
	tagName := t.readTagName()
	if tagName == "" {
		return Token{}, fmt.Errorf("expected tag name at position %d", t.pos)
	}
	if isEndTag {
		if err := t.skipTo('>'); err != nil {
			return Token{}, err
		}
		t.pos++
		return Token{Type: TokenEndTag, TagName: tagName}, nil
	}

	attributes := make(map[string]string)
	for {
		t.skipWhitespace()
		if t.pos >= len(t.input) {
			return Token{}, fmt.Errorf("unexpected EOF in <%s>", tagName)
		}
		if t.input[t.pos] == '>' {
			t.pos++
			break
		}
		if t.input[t.pos] == '/' {
			t.pos++
			t.skipWhitespace()
			if t.pos < len(t.input) && t.input[t.pos] == '>' {
				t.pos++
				return Token{Type: TokenStartTag, TagName: tagName, Attributes: attributes, SelfClosing: true}, nil
			}
			continue
		}
		name, value, err := t.readAttribute()
		if err != nil {
			return Token{}, err
		}
		if _, dup := attributes[name]; !dup {
			attributes[name] = value
		}
	}
	return Token{Type: TokenStartTag, TagName: tagName, Attributes: attributes}, nil
}

func (t *Tokenizer) readTagName() string {
	start := t.pos
	for t.pos < len(t.input) && isTagNameChar(t.input[t.pos]) {
		t.pos++
	}
	return strings.ToLower(t.input[start:t.pos])
}

func (t *Tokenizer) readAttribute() (string, string, error) {
	start := t.pos
	for t.pos < len(t.input) && isAttributeNameChar(t.input[t.pos]) {
		t.pos++
	}
	name := strings.ToLower(t.input[start:t.pos])
	if name == "" {
		return "", "", fmt.Errorf("expected attribute name at position %d", t.pos)
	}
	t.skipWhitespace()
	if t.pos >= len(t.input) || t.input[t.pos] != '=' {
		return name, "", nil
	}
	t.pos++
	t.skipWhitespace()
	value, err := t.readAttributeValue()
	if err != nil {
		return "", "", err
	}
	return name, gohtml.UnescapeString(value), nil
}

func (t *Tokenizer) readAttributeValue() (string, error) {
	if t.pos >= len(t.input) {
		return "", fmt.Errorf("expected attribute value at position %d", t.pos)
	}
	quote := t.input[t.pos]
	if quote == '"' || quote == '\'' {
		t.pos++
		end := strings.IndexByte(t.input[t.pos:], quote)
		if end < 0 {
			return "", fmt.Errorf("unterminated attribute value")
		}
		value := t.input[t.pos : t.pos+end]
		t.pos += end + 1
		return value, nil
	}
	start := t.pos
	for t.pos < len(t.input) && !unicode.IsSpace(rune(t.input[t.pos])) && t.input[t.pos] != '>' {
		t.pos++
	}
	return t.input[start:t.pos], nil
}

func (t *Tokenizer) readText() Token {
	start := t.pos
	t.pos++
	for t.pos < len(t.input) && !(t.input[t.pos] == '<' && t.startsTag()) {
		t.pos++
	}
	return Token{Type: TokenText, Text: gohtml.UnescapeString(t.input[start:t.pos])}
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && unicode.IsSpace(rune(t.input[t.pos])) {
		t.pos++
	}
}

func (t *Tokenizer) skipTo(target byte) error {
	idx := strings.IndexByte(t.input[t.pos:], target)
	if idx < 0 {
		t.pos = len(t.input)
		return fmt.Errorf("expected '%c' but reached EOF", target)
	}
	t.pos += idx
	return nil
}

// ReadRawUntil reads raw content up to the closing tag of a raw text
// element such as <script> or <style>, and consumes the closing tag.
func (t *Tokenizer) ReadRawUntil(endTag string) string {
	needle := "</" + endTag
	lower := strings.ToLower(t.input[t.pos:])
	idx := strings.Index(lower, needle)
	if idx < 0 {
		content := t.input[t.pos:]
		t.pos = len(t.input)
		return content
	}
	content := t.input[t.pos : t.pos+idx]
	t.pos += idx
	if err := t.skipTo('>'); err == nil {
		t.pos++
	}
	return content
}

func isTagNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isAttributeNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':' || c == '.'
}
