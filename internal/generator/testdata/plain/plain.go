package plain

type Widget struct {
	Size int
}
