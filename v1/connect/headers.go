package connect

// Header is a single string-valued record header.
type Header struct {
	Key   string
	Value string
}

// Headers keeps insertion order and allows repeated keys.
type Headers []Header

// Add appends a header and returns the extended set.
func (h Headers) Add(key, value string) Headers {
	return append(h, Header{Key: key, Value: value})
}

// LastWithName returns the value of the last header named key.
func (h Headers) LastWithName(key string) (string, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].Key == key {
			return h[i].Value, true
		}
	}
	return "", false
}

// Clone returns an independent copy.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	return append(Headers(nil), h...)
}
