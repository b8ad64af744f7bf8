package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// A session shared by both ledgers is reachable through the API (a session
// created on the text route can be extended on the image route), and each
// ledger reaps sessions by its own accounting only. The schema must therefore
// never chain ledger rows to the session row: reaping a session after the last
// text artifact is deleted must leave the image artifacts in place, listable
// under their session id.
func TestInitSchema_ArtifactsSurviveSessionReap(t *testing.T) {
	data, err := FS.ReadFile("00001_init.sql")
	require.NoError(t, err)
	schema := string(data)

	for _, line := range strings.Split(schema, "\n") {
		if strings.Contains(line, "session_id") && strings.Contains(line, "BIGINT") {
			require.NotContains(t, line, "REFERENCES sessions",
				"ledger rows must outlive a reaped session")
		}
	}
}

func TestInitSchema_UserRowsAnchorEverything(t *testing.T) {
	data, err := FS.ReadFile("00001_init.sql")
	require.NoError(t, err)
	schema := string(data)

	require.Equal(t, 3, strings.Count(schema, "REFERENCES users (id) ON DELETE CASCADE"),
		"sessions and both ledgers hang off users")
}
