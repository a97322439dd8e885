package bigquery_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ticketlens/pkg/repository/bigquery"
)

func TestListTicketsSQL(t *testing.T) {
	const fqn = "`my-project.support_tickets_raw.tickets`"

	t.Run("positive limit pages in the warehouse", func(t *testing.T) {
		sql, params, skip := bigquery.ListTicketsSQL(fqn, 500, 1000)
		gt.Value(t, strings.Contains(sql, "LIMIT @limit OFFSET @offset")).Equal(true)
		gt.Array(t, params).Length(2).Required()
		gt.Value(t, params[0].Value).Equal(int64(500))
		gt.Value(t, params[1].Value).Equal(int64(1000))
		gt.Value(t, skip).Equal(0)
	})

	t.Run("no limit drops the clause and skips client-side", func(t *testing.T) {
		sql, params, skip := bigquery.ListTicketsSQL(fqn, 0, 30)
		gt.Value(t, strings.Contains(sql, "LIMIT")).Equal(false)
		gt.Value(t, strings.Contains(sql, "OFFSET")).Equal(false)
		gt.Array(t, params).Length(0)
		gt.Value(t, skip).Equal(30)
	})

	t.Run("negative limit behaves like no limit", func(t *testing.T) {
		sql, params, skip := bigquery.ListTicketsSQL(fqn, -1, 0)
		gt.Value(t, strings.Contains(sql, "LIMIT")).Equal(false)
		gt.Array(t, params).Length(0)
		gt.Value(t, skip).Equal(0)
	})
}
