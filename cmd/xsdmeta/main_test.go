package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/xsdmeta/internal/describe"
)

const validModel = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:complexType name="AddressType">
    <xs:sequence>
      <xs:element name="street" type="xs:string"/>
    </xs:sequence>
  </xs:complexType>
  <xs:element name="Customer">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="id" type="xs:string"/>
        <xs:element name="address" type="AddressType" minOccurs="0"/>
      </xs:sequence>
    </xs:complexType>
    <xs:unique name="Customer">
      <xs:selector xpath="."/>
      <xs:field xpath="id"/>
    </xs:unique>
  </xs:element>
</xs:schema>`

const invalidModel = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="Customer">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="id" type="xs:string" minOccurs="0"/>
      </xs:sequence>
    </xs:complexType>
    <xs:unique name="Customer">
      <xs:selector xpath="."/>
      <xs:field xpath="id"/>
    </xs:unique>
  </xs:element>
</xs:schema>`

// workdir moves the test into an empty directory holding the given files.
func workdir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	t.Chdir(dir)
	return dir
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := runWithArgs(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	workdir(t, nil)
	code, stdout, _ := runCLI("version")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "xsdmeta dev")
}

func TestCheck(t *testing.T) {
	workdir(t, map[string]string{"valid.xsd": validModel, "invalid.xsd": invalidModel, "broken.xsd": "<xs:schema"})

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "valid model",
			args:       []string{"check", "valid.xsd"},
			wantCode:   exitSuccess,
			wantStdout: "valid.xsd: ok (1 entity types, 1 reusable types, 0 errors, 0 warnings)",
		},
		{
			name:       "errors are reported",
			args:       []string{"check", "invalid.xsd"},
			wantCode:   exitSuccess,
			wantStdout: "invalid.xsd: has errors",
			wantStderr: "[FIELD_KEY_MUST_BE_MANDATORY]",
		},
		{
			name:       "errors fail in strict mode",
			args:       []string{"check", "--strict", "valid.xsd", "invalid.xsd"},
			wantCode:   exitFailure,
			wantStdout: "valid.xsd: ok",
			wantStderr: "invalid.xsd: [FIELD_KEY_MUST_BE_MANDATORY]",
		},
		{
			name:       "malformed model",
			args:       []string{"check", "broken.xsd"},
			wantCode:   exitFailure,
			wantStderr: "broken.xsd: load schema broken.xsd",
		},
		{
			name:     "missing argument",
			args:     []string{"check"},
			wantCode: exitUsage,
		},
		{
			name:     "unknown flag",
			args:     []string{"check", "--bogus", "valid.xsd"},
			wantCode: exitUsage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(tt.args...)
			assert.Equal(t, tt.wantCode, code, "stderr = %s", stderr)
			assert.Contains(t, stdout, tt.wantStdout)
			assert.Contains(t, stderr, tt.wantStderr)
		})
	}
}

func TestStrictFromEnvironment(t *testing.T) {
	workdir(t, map[string]string{"invalid.xsd": invalidModel})
	t.Setenv("XSDMETA_METADATA_VALIDATION_STRICT", "true")

	code, _, _ := runCLI("check", "invalid.xsd")
	assert.Equal(t, exitFailure, code)

	code, _, _ = runCLI("check", "--strict=false", "invalid.xsd")
	assert.Equal(t, exitSuccess, code)
}

func TestStrictFromEnvFile(t *testing.T) {
	workdir(t, map[string]string{
		"invalid.xsd": invalidModel,
		".env":        "XSDMETA_METADATA_VALIDATION_STRICT=true\n",
	})
	// restore the variable once godotenv has set it
	t.Setenv("XSDMETA_METADATA_VALIDATION_STRICT", "")
	require.NoError(t, os.Unsetenv("XSDMETA_METADATA_VALIDATION_STRICT"))

	code, _, _ := runCLI("check", "invalid.xsd")
	assert.Equal(t, exitFailure, code)

	code, _, stderr := runCLI("--env-file", "missing.env", "check", "invalid.xsd")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "load missing.env")
}

func TestTypes(t *testing.T) {
	workdir(t, map[string]string{"valid.xsd": validModel})

	code, stdout, stderr := runCLI("types", "--reusable", "valid.xsd")
	require.Equal(t, exitSuccess, code, "stderr = %s", stderr)
	assert.Contains(t, stdout, "NAME")
	assert.Regexp(t, `Customer\s+entity\s+id\s+-\s+2`, stdout)
	assert.Regexp(t, `AddressType\s+reusable\s+-\s+-\s+1`, stdout)
}

func TestDescribe(t *testing.T) {
	workdir(t, map[string]string{"valid.xsd": validModel})

	code, stdout, stderr := runCLI("describe", "valid.xsd")
	require.Equal(t, exitSuccess, code, "stderr = %s", stderr)
	var m describe.Model
	require.NoError(t, json.Unmarshal([]byte(stdout), &m), "a pipe defaults to json")
	require.Len(t, m.Entities, 1)
	assert.Equal(t, "Customer", m.Entities[0].Name)

	code, stdout, _ = runCLI("describe", "-o", "yaml", "valid.xsd")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "name: Customer")

	code, _, stderr = runCLI("describe", "--format", "xml", "valid.xsd")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "unknown format")
}

func TestSettings(t *testing.T) {
	workdir(t, map[string]string{
		"mdm.conf":   "system.cluster=true\nmetadata.annotations.disabled=schematron\n",
		"other.conf": "metadata.xml.max_depth=bad\n",
	})

	code, stdout, stderr := runCLI("settings", "--verbose")
	require.Equal(t, exitSuccess, code, "stderr = %s", stderr)
	assert.Contains(t, stdout, "file: mdm.conf")
	assert.Contains(t, stdout, "system.cluster: true")
	assert.Contains(t, stdout, "metadata.log.verbose: true")
	assert.Contains(t, stdout, "- schematron")

	code, _, stderr = runCLI("--config", "other.conf", "settings")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "setting metadata.xml.max_depth")

	code, _, _ = runCLI("--config", "absent.conf", "settings")
	assert.Equal(t, exitUsage, code)
}
