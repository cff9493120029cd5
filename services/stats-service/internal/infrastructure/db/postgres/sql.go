package postgres

const insertHitSQL = `
INSERT INTO hits (app, uri, ip, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`

// An empty uris array disables the filter.
const listHitsInRangeSQL = `
SELECT id, app, uri, ip, created_at
FROM hits
WHERE created_at BETWEEN $1 AND $2
  AND (cardinality($3::text[]) = 0 OR uri = ANY($3::text[]))
ORDER BY created_at ASC, id ASC`
