package integrations

// Packager bundles a downloaded chapter folder into a single file at dest.
// The folder is removed once the archive is complete.
type Packager interface {
	Package(title, dir, dest string) error
	Ext() string
}
