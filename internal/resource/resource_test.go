package resource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testDomain = `
domain:
  contacts:
    schema:
      name: {type: string, required: true, unique: true}
      born: {type: datetime}
      died: {type: datetime}
      status: {type: string, default: active}
      owner: {type: string}
    auth_field: owner
    extra_response_fields: [status]
  invoices:
    schema:
      number: {type: integer, required: true}
    hateoas: false
`

func writeDomain(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDomain(t *testing.T) {
	reg, err := LoadDomain(writeDomain(t, testDomain))
	require.NoError(t, err)
	require.Equal(t, []string{"contacts", "invoices"}, reg.Names())

	contacts, ok := reg.Get("contacts")
	require.True(t, ok)
	require.Equal(t, "owner", contacts.AuthField)
	require.True(t, contacts.HateoasEnabled())
	require.Equal(t, []string{"born", "died"}, contacts.DateFields())
	require.Equal(t, []string{"status"}, contacts.DefaultFields())
	require.Equal(t, "active", contacts.Schema["status"].Default)
	require.True(t, contacts.Schema["name"].Required)
	require.True(t, contacts.Schema["name"].Unique)

	invoices, ok := reg.Get("invoices")
	require.True(t, ok)
	require.False(t, invoices.HateoasEnabled())
	require.Empty(t, invoices.DateFields())
}

func TestLoadDomainRejectsBadType(t *testing.T) {
	_, err := LoadDomain(writeDomain(t, `
domain:
  contacts:
    schema:
      name: {type: varchar}
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown type")
}

func TestLoadDomainRejectsUndeclaredAuthField(t *testing.T) {
	_, err := LoadDomain(writeDomain(t, `
domain:
  contacts:
    schema:
      name: {type: string}
    auth_field: owner
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "auth_field")
}
