package entities

// Ref returns a nullable reference to id; the empty string means no reference
func Ref(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// Deref returns the referenced id or ""
func Deref(ref *string) string {
	if ref == nil {
		return ""
	}
	return *ref
}

func cloneRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := *ref
	return &v
}
