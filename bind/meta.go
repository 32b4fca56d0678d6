package bind

// MetaMethod names a metatable entry.
type MetaMethod string

const (
	MetaIndex     MetaMethod = "__index"
	MetaNewIndex  MetaMethod = "__newindex"
	MetaCall      MetaMethod = "__call"
	MetaToString  MetaMethod = "__tostring"
	MetaLen       MetaMethod = "__len"
	MetaUnm       MetaMethod = "__unm"
	MetaAdd       MetaMethod = "__add"
	MetaSub       MetaMethod = "__sub"
	MetaMul       MetaMethod = "__mul"
	MetaDiv       MetaMethod = "__div"
	MetaMod       MetaMethod = "__mod"
	MetaPow       MetaMethod = "__pow"
	MetaConcat    MetaMethod = "__concat"
	MetaEq        MetaMethod = "__eq"
	MetaLt        MetaMethod = "__lt"
	MetaLe        MetaMethod = "__le"
	MetaMetatable MetaMethod = "__metatable"
	MetaName      MetaMethod = "__name"
)

func (m MetaMethod) String() string {
	return string(m)
}
