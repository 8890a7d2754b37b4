package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

func Template(kind string) (string, error) {
	switch Format(strings.ToLower(strings.TrimSpace(kind))) {
	case FormatTOML:
		return tomlTemplate, nil
	case FormatYAML, "yml":
		return yamlTemplate, nil
	default:
		return "", fmt.Errorf("unknown template kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// Marshal renders cat in the given format.
func Marshal(cat Catalog, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cat); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(cat)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

const tomlTemplate = `# Command schemas. Fields are encoded big-endian in the order listed.
[[commands]]
name = "sensor.read"
peripheral = 94
command = 1
direction = "request"

  [[commands.fields]]
  name = "index"
  width = 1
  max = 31

[[commands]]
name = "sensor.read"
peripheral = 94
command = 1
direction = "response"

  [[commands.fields]]
  name = "kind"
  width = 1

  [[commands.fields]]
  name = "value"
  width = 2
  signed = true
`

const yamlTemplate = `# Command schemas. Fields are encoded big-endian in the order listed.
commands:
  - name: sensor.read
    peripheral: 94
    command: 1
    direction: request
    fields:
      - name: index
        width: 1
        max: 31
  - name: sensor.read
    peripheral: 94
    command: 1
    direction: response
    fields:
      - name: kind
        width: 1
      - name: value
        width: 2
        signed: true
`
