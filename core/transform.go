package core

// Transformer mutates a Session in place.
type Transformer interface {
	Transform(s *Session) error
}

// Chain applies transformers in order, stopping at the first error.
func Chain(s *Session, transformers ...Transformer) error {
	for _, tr := range transformers {
		if err := tr.Transform(s); err != nil {
			return err
		}
	}
	return nil
}
