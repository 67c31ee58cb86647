package domain

// Hit — найденный документ и его релевантность.
type Hit struct {
	Item  Item
	Score float64
}

// NoConfidentMatch отличает "кандидаты были, но ниже порога" от "индекс ничего не вернул".
type SearchResult struct {
	Hits             []Hit
	Candidates       int
	NoConfidentMatch bool
}

// Empty сообщает, что результат не содержит документов.
func (r SearchResult) Empty() bool {
	return len(r.Hits) == 0
}
