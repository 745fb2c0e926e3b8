// internal/workers/data-access/query-elasticsearch/models.go
package queryelasticsearch

import "volunteer-workers/internal/workers/data-access/query-elasticsearch/queries"

type Input struct {
	IndexName  string             `json:"indexName,omitempty"`
	QueryType  string             `json:"queryType"`
	Filters    queries.Filters    `json:"filters"`
	Pagination queries.Pagination `json:"pagination"`
}

type Output struct {
	Data      []map[string]interface{} `json:"data"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"` // milliseconds
}
