package model

// Node is a caller-submitted gene. ID is a CURIE such as "NCBIGene:7157".
type Node struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name"`
}
