package bigquery_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketlens/pkg/repository/bigquery"
)

func TestCreateModelSQL(t *testing.T) {
	opts := bigquery.MigrateOptions{
		CreateModel:   true,
		ConnectionID:  "us-west1.vertex_ai_connection",
		ModelEndpoint: "text-embedding-004",
	}

	t.Run("inlines validated literals", func(t *testing.T) {
		sql, err := bigquery.CreateModelSQL("my-project", "`my-project.ml_playground.text_embed_model`", opts)
		gt.NoError(t, err).Required()
		gt.Value(t, strings.Contains(sql, "CREATE MODEL IF NOT EXISTS `my-project.ml_playground.text_embed_model`")).Equal(true)
		gt.Value(t, strings.Contains(sql, "REMOTE WITH CONNECTION `my-project.us-west1.vertex_ai_connection`")).Equal(true)
		gt.Value(t, strings.Contains(sql, "endpoint = 'text-embedding-004'")).Equal(true)
		// DDL statements cannot carry query parameters
		gt.Value(t, strings.Contains(sql, "@")).Equal(false)
	})

	t.Run("requires connection and endpoint", func(t *testing.T) {
		missing := opts
		missing.ConnectionID = ""
		_, err := bigquery.CreateModelSQL("my-project", "`m`", missing)
		gt.Error(t, err)

		missing = opts
		missing.ModelEndpoint = ""
		_, err = bigquery.CreateModelSQL("my-project", "`m`", missing)
		gt.Error(t, err)
	})

	t.Run("rejects connection IDs outside the allowlist", func(t *testing.T) {
		for _, conn := range []string{
			"no_dot_connection",
			"us-west1.conn`; DROP TABLE x",
			"us-west1.conn with spaces",
			"US-WEST1.conn'",
		} {
			bad := opts
			bad.ConnectionID = conn
			_, err := bigquery.CreateModelSQL("my-project", "`m`", bad)
			gt.Error(t, err)
		}
	})

	t.Run("rejects endpoints outside the allowlist", func(t *testing.T) {
		for _, endpoint := range []string{
			"text-embedding-004'",
			"endpoint with spaces",
			".leading-dot",
			"model\nendpoint",
		} {
			bad := opts
			bad.ModelEndpoint = endpoint
			_, err := bigquery.CreateModelSQL("my-project", "`m`", bad)
			gt.Error(t, err)
		}
	})
}
