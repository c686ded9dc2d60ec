package mysql

// row_hash is a content hash computed in Go; it makes re-ingesting the same
// CSV idempotent without trusting any single column to be unique.
const insertReviewsPrefix = "INSERT INTO reviews\n  (row_hash, app_name, version, sentiment_label, sentiment_score, created_at)\nVALUES "

const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  app_name        = VALUES(app_name),\n" +
	"  version         = VALUES(version),\n" +
	"  sentiment_label = VALUES(sentiment_label),\n" +
	"  sentiment_score = VALUES(sentiment_score),\n" +
	"  created_at      = VALUES(created_at)\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// Full-table read feeding the in-memory pipeline; ordered so repeated loads
// enumerate apps in a stable order.
const listReviewsSQL = `
SELECT
  app_name,
  version,
  sentiment_label,
  sentiment_score,
  created_at
FROM reviews
ORDER BY id
`
