package highlight

import (
	"fmt"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Style is the visual attribute set bound to one StyleID.
type Style struct {
	Foreground colorful.Color
	Bold       bool
	Italic     bool
}

// Theme binds style identifiers to visual attributes. It belongs to the
// rendering surface; the engine itself only emits StyleIDs.
type Theme struct {
	Name       string
	Background colorful.Color
	Foreground colorful.Color
	Styles     map[StyleID]Style
}

// StyleOf returns the style for id, falling back to the theme foreground.
func (t *Theme) StyleOf(id StyleID) Style {
	if s, ok := t.Styles[id]; ok {
		return s
	}
	return Style{Foreground: t.Foreground}
}

// DefaultTheme returns the classic Casebook dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Name:       "Casebook Dark",
		Background: mustHex("#272822"),
		Foreground: mustHex("#f8f8f2"),
		Styles: map[StyleID]Style{
			StyleDefault:   {Foreground: mustHex("#f8f8f2")},
			StyleKeyword:   {Foreground: mustHex("#f92672"), Bold: true},
			StyleString:    {Foreground: mustHex("#e6db74")},
			StyleScene:     {Foreground: mustHex("#ae81ff"), Bold: true},
			StyleAction:    {Foreground: mustHex("#51d9cd")},
			StyleCharacter: {Foreground: mustHex("#a6e22e")},
			StyleComment:   {Foreground: mustHex("#d5f8e8"), Italic: true},
			StyleError:     {Foreground: mustHex("#ff5555"), Bold: true},
		},
	}
}

// ParseTheme reads a theme from JSON:
//
//	{
//	  "name": "My Theme",
//	  "background": "#272822",
//	  "foreground": "#f8f8f2",
//	  "styles": {
//	    "keyword": {"color": "#f92672", "bold": true}
//	  }
//	}
//
// Unknown style names are ignored; missing slots fall back to the default
// theme so a partial theme file is always usable.
func ParseTheme(data []byte) (*Theme, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("theme: invalid JSON")
	}
	t := DefaultTheme()
	root := gjson.ParseBytes(data)

	if v := root.Get("name"); v.Exists() {
		t.Name = v.String()
	}
	if v := root.Get("background"); v.Exists() {
		c, err := colorful.Hex(v.String())
		if err != nil {
			return nil, fmt.Errorf("theme: background: %w", err)
		}
		t.Background = c
	}
	if v := root.Get("foreground"); v.Exists() {
		c, err := colorful.Hex(v.String())
		if err != nil {
			return nil, fmt.Errorf("theme: foreground: %w", err)
		}
		t.Foreground = c
	}

	var parseErr error
	root.Get("styles").ForEach(func(key, val gjson.Result) bool {
		id, ok := styleByName(key.String())
		if !ok {
			return true
		}
		style := t.Styles[id]
		if c := val.Get("color"); c.Exists() {
			col, err := colorful.Hex(c.String())
			if err != nil {
				parseErr = fmt.Errorf("theme: style %s: %w", key.String(), err)
				return false
			}
			style.Foreground = col
		}
		style.Bold = val.Get("bold").Bool()
		style.Italic = val.Get("italic").Bool()
		t.Styles[id] = style
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return t, nil
}

// LoadTheme reads a theme file, returning the default theme when the path
// is empty or missing.
func LoadTheme(path string) (*Theme, error) {
	if path == "" {
		return DefaultTheme(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultTheme(), nil
		}
		return nil, err
	}
	return ParseTheme(data)
}

// MarshalJSON renders the theme as theme-file JSON.
func (t *Theme) MarshalJSON() ([]byte, error) {
	out := []byte("{}")
	var err error
	set := func(path string, value any) {
		if err != nil {
			return
		}
		out, err = sjson.SetBytes(out, path, value)
	}

	set("name", t.Name)
	set("background", t.Background.Hex())
	set("foreground", t.Foreground.Hex())
	for id := StyleDefault; id < styleCount; id++ {
		s := t.StyleOf(id)
		base := "styles." + id.String()
		set(base+".color", s.Foreground.Hex())
		if s.Bold {
			set(base+".bold", true)
		}
		if s.Italic {
			set(base+".italic", true)
		}
	}
	return out, err
}

// WriteDefault writes the default theme to path as a starting point for
// customization. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("theme: %s already exists", path)
	}
	data, err := DefaultTheme().MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func styleByName(name string) (StyleID, bool) {
	for i, n := range styleNames {
		if n == name {
			return StyleID(i), true
		}
	}
	return StyleDefault, false
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
