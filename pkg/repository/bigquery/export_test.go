package bigquery

type GenerateEmbeddingRow = generateEmbeddingRow

var (
	CreateModelSQL  = createModelSQL
	ListTicketsSQL  = listTicketsSQL
	OrderEmbeddings = orderEmbeddings
)
