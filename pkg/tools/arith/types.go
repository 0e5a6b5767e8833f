package arith

// SumArgs represents arguments for the Summation operation
type SumArgs struct {
	X int `json:"x" jsonschema:"required,description=The first integer to be added."`
	Y int `json:"y" jsonschema:"required,description=The second integer to be added."`
}

// ProductArgs represents arguments for the Multiplication operation
type ProductArgs struct {
	X int `json:"x" jsonschema:"required,description=The first integer to be multiplied."`
	Y int `json:"y" jsonschema:"required,description=The second integer to be multiplied."`
}
