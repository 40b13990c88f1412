package policy

import "strings"

// Fixed screen paths.
const (
	RootPath         = "/"
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// Kind tells whether a route is open to everyone or role-guarded.
type Kind uint8

const (
	Guest Kind = iota + 1
	Guarded
)

func (k Kind) String() string {
	switch k {
	case Guest:
		return "guest"
	case Guarded:
		return "guarded"
	default:
		return "unknown"
	}
}

// Route is one entry of the top-level route table.
type Route struct {
	Path    string
	Kind    Kind
	Subtree Subtree
}

var routes = func() []Route {
	out := []Route{
		{Path: RootPath, Kind: Guest},
		{Path: LoginPath, Kind: Guest},
		{Path: UnauthorizedPath, Kind: Guest},
	}
	for _, s := range Subtrees() {
		out = append(out, Route{Path: s.Prefix(), Kind: Guarded, Subtree: s})
	}
	return out
}()

// Routes returns a copy of the top-level route table.
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// Resolve finds the route owning path by longest prefix on segment boundaries. The root
// route only matches "/" itself.
func Resolve(path string) (Route, bool) {
	if path == "" {
		path = RootPath
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}

	var (
		best  Route
		found bool
	)
	for _, r := range routes {
		if !matches(r.Path, path) {
			continue
		}
		if !found || len(r.Path) > len(best.Path) {
			best, found = r, true
		}
	}
	return best, found
}

func matches(prefix, path string) bool {
	if prefix == RootPath {
		return path == RootPath
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix) && path[len(prefix)] == '/'
}
