package registry

// Declaration descriptors for a target application. The loader builds these
// once from the application's source tree; the assembly engine only ever
// queries them by name, so no stage needs to re-read source.

// HTTPMethodNames lists the handler methods the analyzer looks for, in the
// order they are processed.
var HTTPMethodNames = [...]string{"get", "post", "put", "patch", "delete"}

// Application is the fully loaded declaration set for one target module.
type Application struct {
	// Name is the module name the application was resolved from.
	Name string
	// Version is the declared Version constant, empty when absent.
	Version string
	// Doc is the root package comment, raw.
	Doc string

	// Routes is the route table in declaration order.
	Routes []Route
	// Views maps view file base names to their descriptors.
	Views map[string]ViewFile
	// ViewNames holds the view file names in lexicographic order.
	ViewNames []string
	// Handlers maps handler struct names to their descriptors.
	Handlers map[string]Handler
	// Serializers maps serializer struct names (with suffix) to descriptors.
	Serializers map[string]Serializer
	// Controllers maps controller struct names (with suffix) to descriptors.
	Controllers map[string]Controller
	// Permissions maps lower-cased entity names to permission declarations.
	Permissions map[string]PermissionSet
}

// Route is one entry of the application's route table. Immutable once read.
type Route struct {
	// Pattern uses the framework placeholder syntax, e.g. "widget/<int:id>".
	Pattern string
	// View references the handler as "<view file>.<handler struct>".
	View string
}

// ViewFile describes one file of the views package. Each contributes one tag.
type ViewFile struct {
	Name string // base file name without extension
	Doc  string // leading file comment, raw
}

// Handler describes one view struct and the HTTP methods it declares.
type Handler struct {
	Name string
	View string // declaring view file base name
	// Methods maps lower-cased verb names to the method's raw doc comment.
	// A method present in source but lacking a doc comment maps to "".
	Methods map[string]string
}

// Serializer describes one field-mapping declaration.
type Serializer struct {
	Name string
	// Fields is the implemented output field set in declaration order,
	// derived from json tags (falling back to snake_case of the Go name).
	Fields []string
	// Doc is the raw documented-field block attached to the type.
	Doc string
}

// Controller describes one input-validator declaration.
type Controller struct {
	Name string
	// Doc carries validation_order for create/update controllers, or
	// search_fields and allowed_ordering for list controllers.
	Doc string
	// Validators maps snake_case field names to each Validate<Field>
	// method's raw doc comment.
	Validators map[string]string
}

// PermissionSet describes the optional per-entity permission declaration.
type PermissionSet struct {
	Entity string
	// Methods maps lower-cased permission method names (list, read, create,
	// update, delete) to their raw doc comments.
	Methods map[string]string
}
