package pipeline

import "strings"

// ResourceScheme prefixes every resource path produced by the trigger unit.
const ResourceScheme = "s3://"

// ResourceURI joins a bucket and object key into an s3:// URI.
func ResourceURI(bucket, key string) string {
	return ResourceScheme + bucket + "/" + key
}

// TrimScheme removes a leading "<scheme>://" from path, if present.
func TrimScheme(path string) string {
	if _, rest, found := strings.Cut(path, "://"); found {
		return rest
	}
	return path
}

// BaseName returns the final "/"-separated segment of path.
// A path ending in "/" has an empty base name.
func BaseName(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

// SplitExt splits a filename into base name and extension. The extension runs
// from the last "." to the end and is empty when there is no dot or when every
// character before the last dot is itself a dot, so ".env" has no extension.
func SplitExt(name string) (base, ext string) {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name, ""
	}
	if strings.Trim(name[:dot], ".") == "" {
		return name, ""
	}
	return name[:dot], name[dot:]
}

// DocumentID derives a document identifier from an object key: the filename
// with its extension removed.
func DocumentID(key string) string {
	base, _ := SplitExt(BaseName(key))
	return base
}
