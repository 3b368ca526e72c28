package rotowire

// Parser locates and extracts lineups from the lineup page markup.
type Parser struct {
	*Locator
}

func NewParser() *Parser {
	return &Parser{Locator: NewLocator()}
}
