package dev

// HeaderBuilder regenerates the header. build.HeaderBuilder implements it.
type HeaderBuilder interface {
	Build() error
}
