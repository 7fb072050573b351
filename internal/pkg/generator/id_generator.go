package generator

import (
	"fmt"

	"github.com/google/uuid"
)

type IDGenerator struct{}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

func (g *IDGenerator) GenerateSaleID() string {
	return fmt.Sprintf("sale_%s", uuid.NewString())
}

func (g *IDGenerator) GenerateSaleItemID() string {
	return fmt.Sprintf("sitem_%s", uuid.NewString())
}

func (g *IDGenerator) GenerateProductID() string {
	return fmt.Sprintf("prod_%s", uuid.NewString())
}

func (g *IDGenerator) GenerateClientID() string {
	return fmt.Sprintf("client_%s", uuid.NewString())
}
