package providers

import (
	"bytes"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ${NAME} or ${NAME:-default}
var reference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// YAMLProvider decodes a YAML document onto the configuration. The file,
// when named, wins over in-memory content.
type YAMLProvider struct {
	filename string
	content  []byte
}

func NewYAMLProvider(filename string, content []byte) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
		content:  content,
	}
}

func (p *YAMLProvider) read() ([]byte, error) {
	if p.filename != "" {
		return os.ReadFile(p.filename)
	}
	return p.content, nil
}

// expand replaces environment references. Unset variables without a
// default expand to the empty string.
func expand(content []byte) []byte {
	return reference.ReplaceAllFunc(content, func(m []byte) []byte {
		groups := reference.FindSubmatch(m)
		if v, ok := os.LookupEnv(string(groups[1])); ok {
			return []byte(v)
		}
		return groups[2]
	})
}

func (p *YAMLProvider) Load(cfg any) error {
	content, err := p.read()
	if err != nil {
		return err
	}
	content = expand(content)
	if len(bytes.TrimSpace(content)) == 0 {
		return nil
	}
	return yaml.Unmarshal(content, cfg)
}
