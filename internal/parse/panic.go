package parse

import "fmt"

func errParserPanic(recovered any) error {
	return fmt.Errorf("parse: parser panicked: %v", recovered)
}
