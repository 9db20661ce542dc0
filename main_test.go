package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSchemaCommandPrintsYAML(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"schema", "health"})
	require.NoError(t, cmd.Execute())

	var doc struct {
		Kind  string `yaml:"kind"`
		Steps []struct {
			Name string `yaml:"name"`
		} `yaml:"steps"`
		Fields []struct {
			Name    string `yaml:"name"`
			Default string `yaml:"default"`
		} `yaml:"fields"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "health_policy", doc.Kind)
	assert.Equal(t, "Policy Details", doc.Steps[0].Name)

	defaults := map[string]string{}
	for _, f := range doc.Fields {
		defaults[f.Name] = f.Default
	}
	assert.Equal(t, "Yearly", defaults["paymentMode"])
	assert.Equal(t, "18", defaults["gstPercentage"])
}

func TestSchemaCommandRejectsUnknownKind(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"schema", "boat"})
	assert.Error(t, cmd.Execute())
}
