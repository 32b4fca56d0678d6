package typed

import "encoding/json"

// Types serialize as objects tagged by "kind" so that consumers can
// rebuild them without parsing annotation syntax.

func (p Primitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
	}{"primitive", string(p)})
}

func (a Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Elem Type   `json:"elem"`
	}{"array", a.Elem})
}

func (m Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string `json:"kind"`
		Key   Type   `json:"key"`
		Value Type   `json:"value"`
	}{"map", m.Key, m.Value})
}

func (f Function) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    string   `json:"kind"`
		Params  []Param  `json:"params"`
		Returns []Return `json:"returns"`
	}{"function", nonNil(f.Params), nonNil(f.Returns)})
}

func (c Class) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
	}{"class", c.Name})
}

func (u Union) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string `json:"kind"`
		Types []Type `json:"types"`
	}{"union", u.Types})
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}
