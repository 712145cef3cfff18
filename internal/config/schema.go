package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaID is the published location of the configuration schema
const SchemaID = "https://raw.githubusercontent.com/spachava753/mtgmcp/refs/heads/main/schema/mtgmcp-config-schema.json"

// Schema returns the indented JSON schema of the configuration file.
func Schema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}

	schema := reflector.Reflect(&RawConfig{})
	schema.Title = "mtgmcp Configuration Schema"
	schema.Description = "JSON Schema for the mtgserver card search tool host configuration file"
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.ID = SchemaID

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
