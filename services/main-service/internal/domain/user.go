package domain

type User struct {
	ID     int64
	Name   string
	Email  string
	Rating int
}

type Category struct {
	ID   int32
	Name string
}

type Compilation struct {
	ID       int32
	Title    string
	Pinned   bool
	EventIDs []int64
}

type CompilationPatch struct {
	Title    *string
	Pinned   *bool
	EventIDs *[]int64
}
