// Package manifest locates, parses, validates and normalizes library manifest
// files. A library describes itself with one of library.json, .library.json or
// library.properties, searched in that order when a directory is given.
//
// # Manifest Format
//
// JSON manifests are parsed strictly (no comments, no trailing commas) and
// must have an object at the root:
//
//	{
//	  "name": "SomeLibrary",
//	  "version": "1.0.0",
//	  "description": "Does useful things",
//	  "main": ["src/lib.js", "src/lib.css"]
//	}
//
// Properties manifests hold one key=value pair per line and every value is
// read as a string:
//
//	name=SomeLibrary
//	version=1.0.0
//
// # Usage
//
// Read a manifest from a directory or file:
//
//	m, file, err := manifest.ReadSync("./vendor/some-library")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(file, m.Name())
//
// Read disables validation or normalization per call:
//
//	m, _, err := manifest.Read(ctx, dir, manifest.WithValidate(false))
//
// GetIssues reports every error and warning without failing; Validate fails
// on the first error only.
//
// # Error Handling
//
// Failures are *Error values carrying a Code, the absolute File and a Message:
//   - CodeNotFound (ENOENT): the path or every candidate file is missing
//   - CodeMalformed (EMALFORMED): the file is not valid JSON or properties text
//   - CodeInvalid (EINVALID): the manifest failed a blocking validation rule
//
// errors.Is matches them against ErrNotFound, ErrMalformed and ErrInvalid.
// Other I/O failures (permission denied and the like) are returned untouched.
package manifest
