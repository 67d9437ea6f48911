// Package funique compares two collections of directories (and/or checksum
// manifests) and reports the files that exist on only one side, i.e. files
// with no content-equal counterpart on the other side.
//
// # Core API
//
// The main entry point is Comparison, which owns both sides of a run:
//
//	cmp, err := funique.NewComparison(settings)
//	if err != nil {
//		return err
//	}
//	cmp.AddDirectory(funique.Left, "/backup/2023")
//	cmp.AddDirectory(funique.Right, "/backup/2024")
//	cmp.AddChecksumFile(funique.Right, "/archive/SHA512SUMS")
//
//	result, err := cmp.Run(shutdownChan)
//	for _, u := range result.Unique {
//		fmt.Printf("%s %s\n", u.Side, u.Path)
//	}
//
// # Matching
//
// Files are grouped into size buckets of floor(size/divisor). Only buckets
// present on both sides are cross-compared. Each pair goes through a chain
// of discriminators from cheapest to most expensive: device+inode identity,
// byte size, an adler32 checksum over the leading bytes of large files, and
// finally a full checksum under the configured algorithm. Checksum manifest
// records carry no size, so they are compared against every bucket on the
// opposite side by digest alone.
//
// # Configuration
//
// Settings are normally resolved from an INI file:
//
//	cfg, err := funique.LoadConfig(funique.DefaultConfigPath())
//	settings, err := cfg.Settings()
//
// Enable debug output:
//
//	funique.SetDebugFlags("scan,match")
//	funique.SetVerboseLevel(2)
package funique
