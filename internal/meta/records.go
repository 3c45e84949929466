package meta

// Access modifiers as emitted in accessModifier.
const (
	AccessPublic    = "public"
	AccessPrivate   = "private"
	AccessProtected = "protected"
)

// LegacyAccess maps an access modifier to the alias older graders read from
// the "access" field.
func LegacyAccess(modifier string) string {
	switch modifier {
	case AccessPrivate:
		return "closed"
	case AccessProtected:
		return "protected"
	default:
		return "opened"
	}
}

// Decorator is one decorator application, in source order.
type Decorator struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

// ParamDecorators lists the decorators of one decorated parameter.
type ParamDecorators struct {
	ParameterIndex int         `json:"parameterIndex"`
	Name           string      `json:"name"`
	Decorators     []Decorator `json:"decorators"`
}

// Parameter describes one formal parameter.
type Parameter struct {
	Name                string      `json:"name"`
	Type                Type        `json:"type"`
	Types               []string    `json:"types"`
	Optional            bool        `json:"optional"`
	DefaultValuePresent bool        `json:"defaultValuePresent"`
	DefaultValue        string      `json:"defaultValue,omitempty"`
	IsRest              bool        `json:"isRest,omitempty"`
	Decorators          []Decorator `json:"decorators,omitempty"`
}

// NewParameter builds a parameter and fills the legacy single-element type list.
func NewParameter(name string, typ Type) Parameter {
	return Parameter{Name: name, Type: typ, Types: []string{typ.String()}}
}

// ParamTypes returns the legacy "params" list: parameter types in order.
func ParamTypes(params []Parameter) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, p.Type.String())
	}
	return out
}

// Signature is a body-less overload slot.
type Signature struct {
	Params     []string    `json:"params"`
	Parameters []Parameter `json:"parameters"`
	ReturnType string      `json:"returnType"`
}

// Prop is one component prop.
type Prop struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Optional     bool   `json:"optional,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty"`
}

// Function is a function declaration, a function-valued variable, or a
// function component.
type Function struct {
	Name          string           `json:"name"`
	IsExported    bool             `json:"isExported"`
	IsDeclared    bool             `json:"isDeclared"`
	IsDefault     bool             `json:"isDefault,omitempty"`
	IsAsync       bool             `json:"isAsync"`
	IsGenerator   bool             `json:"isGenerator,omitempty"`
	Parameters    []Parameter      `json:"parameters"`
	Params        []string         `json:"params"`
	ReturnType    string           `json:"returnType"`
	Body          string           `json:"body,omitempty"`
	Decorators    []Decorator      `json:"decorators,omitempty"`
	GenericsTypes []string         `json:"genericsTypes"`
	JSX           bool             `json:"jsx,omitempty"`
	Props         []Prop           `json:"props,omitempty"`
	Template      *TemplateSummary `json:"jsxAnalysis,omitempty"`
	Overloads     []Signature      `json:"-"`

	hasBody bool
}

// HasBody reports whether the record comes from an implementation.
func (f *Function) HasBody() bool {
	return f.hasBody
}

// SetHasBody marks the record as an implementation.
func (f *Function) SetHasBody(v bool) {
	f.hasBody = v
}

// Signature returns the overload-slot view of f.
func (f *Function) Signature() Signature {
	return Signature{Params: ParamTypes(f.Parameters), Parameters: f.Parameters, ReturnType: f.ReturnType}
}

// MarshalJSON adds overload0..overloadN-1 next to the regular fields.
func (f Function) MarshalJSON() ([]byte, error) {
	type plain Function
	return marshalWithSlots(plain(f), "overload", f.Overloads)
}

// Variable is one bound name of a var/let/const declaration.
type Variable struct {
	Name           string           `json:"name"`
	Kind           string           `json:"kind"`
	Type           Type             `json:"type"`
	TypeString     string           `json:"typeString"`
	Value          string           `json:"value,omitempty"`
	HasInitializer bool             `json:"hasInitializer"`
	IsExported     bool             `json:"isExported"`
	IsDeclared     bool             `json:"isDeclared"`
	IsFunction     bool             `json:"isFunction,omitempty"`
	Destructured   bool             `json:"destructured,omitempty"`
	JSX            bool             `json:"jsx,omitempty"`
	Props          []Prop           `json:"props,omitempty"`
	Template       *TemplateSummary `json:"jsxAnalysis,omitempty"`
}

// Property is a class field or constructor parameter property.
type Property struct {
	Name                string      `json:"name"`
	Type                Type        `json:"type"`
	TypeString          string      `json:"typeString"`
	AccessModifier      string      `json:"accessModifier"`
	Access              string      `json:"access"`
	IsStatic            bool        `json:"isStatic"`
	IsReadonly          bool        `json:"isReadonly"`
	IsAbstract          bool        `json:"isAbstract"`
	IsOptional          bool        `json:"isOptional,omitempty"`
	IsOverride          bool        `json:"isOverride,omitempty"`
	IsParameterProperty bool        `json:"isParameterProperty,omitempty"`
	Decorators          []Decorator `json:"decorators"`
	Value               string      `json:"value,omitempty"`
}

// Method is a class method or accessor.
type Method struct {
	Name            string            `json:"name"`
	Kind            string            `json:"kind"`
	Parameters      []Parameter       `json:"parameters"`
	Params          []string          `json:"params"`
	ReturnType      string            `json:"returnType"`
	AccessModifier  string            `json:"accessModifier"`
	Access          string            `json:"access"`
	IsStatic        bool              `json:"isStatic"`
	IsAsync         bool              `json:"isAsync"`
	IsAbstract      bool              `json:"isAbstract"`
	IsOverride      bool              `json:"isOverride,omitempty"`
	IsOptional      bool              `json:"isOptional,omitempty"`
	IsGenerator     bool              `json:"isGenerator,omitempty"`
	Decorators      []Decorator       `json:"decorators"`
	ParamDecorators []ParamDecorators `json:"paramDecorators"`
	GenericsTypes   []string          `json:"genericsTypes"`
	Body            string            `json:"body,omitempty"`
	Overloads       []Signature       `json:"-"`

	hasBody bool
}

// HasBody reports whether the method has an implementation.
func (m *Method) HasBody() bool {
	return m.hasBody
}

// SetHasBody marks the method as an implementation.
func (m *Method) SetHasBody(v bool) {
	m.hasBody = v
}

// MarshalJSON adds overload0..overloadN-1 next to the regular fields.
func (m Method) MarshalJSON() ([]byte, error) {
	type plain Method
	return marshalWithSlots(plain(m), "overload", m.Overloads)
}

// Constructor is a class constructor implementation or signature.
type Constructor struct {
	Parameters      []Parameter       `json:"parameters"`
	Params          []string          `json:"params"`
	AccessModifier  string            `json:"accessModifier"`
	ParamDecorators []ParamDecorators `json:"paramDecorators"`
	Body            string            `json:"body,omitempty"`
}

// Class is a class declaration.
type Class struct {
	Name                  string               `json:"name"`
	IsExported            bool                 `json:"isExported"`
	IsDeclared            bool                 `json:"isDeclared"`
	IsAbstract            bool                 `json:"isAbstract"`
	IsDefault             bool                 `json:"isDefault,omitempty"`
	Extends               []string             `json:"extends"`
	Implements            []string             `json:"implements"`
	ExtendedBy            []string             `json:"extendedBy"`
	GenericsTypes         []string             `json:"genericsTypes"`
	Decorators            []Decorator          `json:"decorators"`
	Properties            map[string]*Property `json:"properties"`
	Methods               map[string]*Method   `json:"methods"`
	Constructor           *Constructor         `json:"constructor,omitempty"`
	ConstructorSignatures []Constructor        `json:"-"`
	JSX                   bool                 `json:"jsx,omitempty"`
	PropsType             string               `json:"propsType,omitempty"`
	StateType             string               `json:"stateType,omitempty"`
	Template              *TemplateSummary     `json:"jsxAnalysis,omitempty"`

	methodOverloads reconciler[Signature]
	ctorOverloads   reconciler[Constructor]
}

// NewClass returns a class record with empty member maps.
func NewClass(name string) *Class {
	return &Class{
		Name:          name,
		Extends:       []string{},
		Implements:    []string{},
		ExtendedBy:    []string{},
		GenericsTypes: []string{},
		Decorators:    []Decorator{},
		Properties:    make(map[string]*Property),
		Methods:       make(map[string]*Method),
	}
}

// MarshalJSON adds constructorSignature0..N-1 next to the regular fields.
func (c Class) MarshalJSON() ([]byte, error) {
	type plain Class
	return marshalWithSlots(plain(c), "constructorSignature", c.ConstructorSignatures)
}

// PropertyDetail is the detailed view of one interface property.
type PropertyDetail struct {
	Name       string `json:"name"`
	Type       Type   `json:"type"`
	Optional   bool   `json:"optional"`
	TypeString string `json:"typeString"`
	IsReadonly bool   `json:"isReadonly,omitempty"`
}

// MethodSignature is an interface method or call signature.
type MethodSignature struct {
	Name          string      `json:"name"`
	Parameters    []Parameter `json:"parameters"`
	Params        []string    `json:"params"`
	ReturnType    string      `json:"returnType"`
	Optional      bool        `json:"optional"`
	GenericsTypes []string    `json:"genericsTypes"`
}

// IndexSignature is an interface index signature.
type IndexSignature struct {
	KeyName   string `json:"keyName"`
	KeyType   string `json:"keyType"`
	ValueType string `json:"valueType"`
}

// Interface is an interface declaration. Properties and PropertyDetails
// always describe the same set of properties.
type Interface struct {
	Name            string                      `json:"name"`
	IsExported      bool                        `json:"isExported"`
	IsDeclared      bool                        `json:"isDeclared"`
	Extends         []string                    `json:"extends"`
	ExtendedBy      []string                    `json:"extendedBy"`
	GenericsTypes   []string                    `json:"genericsTypes"`
	Properties      map[string]string           `json:"properties"`
	PropertyDetails []PropertyDetail            `json:"propertyDetails"`
	Methods         map[string]*MethodSignature `json:"methods"`
	CallSignatures  []MethodSignature           `json:"callSignatures,omitempty"`
	IndexSignatures []IndexSignature            `json:"indexSignatures,omitempty"`
}

// NewInterface returns an interface record with empty member collections.
func NewInterface(name string) *Interface {
	return &Interface{
		Name:            name,
		Extends:         []string{},
		ExtendedBy:      []string{},
		GenericsTypes:   []string{},
		Properties:      make(map[string]string),
		PropertyDetails: []PropertyDetail{},
		Methods:         make(map[string]*MethodSignature),
	}
}

// AddProperty records a property in both the legacy map and the detailed list.
// A repeated name replaces the earlier detail in place.
func (i *Interface) AddProperty(d PropertyDetail) {
	d.TypeString = d.Type.String()
	i.Properties[d.Name] = d.TypeString
	for idx := range i.PropertyDetails {
		if i.PropertyDetails[idx].Name == d.Name {
			i.PropertyDetails[idx] = d
			return
		}
	}
	i.PropertyDetails = append(i.PropertyDetails, d)
}

// TypeAlias is a type alias declaration.
type TypeAlias struct {
	Name          string   `json:"name"`
	Type          Type     `json:"type"`
	TypeString    string   `json:"typeString"`
	GenericsTypes []string `json:"genericsTypes"`
	IsExported    bool     `json:"isExported"`
	IsDeclared    bool     `json:"isDeclared"`
}

// EnumMember is one enum member. Value holds a float64/int for numeric members
// or a string for string members.
type EnumMember struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Enum is an enum declaration.
type Enum struct {
	Name       string       `json:"name"`
	IsConst    bool         `json:"isConst"`
	IsExported bool         `json:"isExported"`
	IsDeclared bool         `json:"isDeclared"`
	Members    []EnumMember `json:"members"`
}

// ImportSpecifier is one named import binding.
type ImportSpecifier struct {
	Name       string `json:"name"`
	Alias      string `json:"alias,omitempty"`
	IsTypeOnly bool   `json:"isTypeOnly,omitempty"`
}

// Import collects every binding imported from one module source.
type Import struct {
	Source     string            `json:"source"`
	Default    string            `json:"default,omitempty"`
	Namespace  string            `json:"namespace,omitempty"`
	Named      []ImportSpecifier `json:"named"`
	IsTypeOnly bool              `json:"isTypeOnly"`
	SideEffect bool              `json:"sideEffect,omitempty"`
}

// Export kinds.
const (
	ExportDeclaration = "declaration"
	ExportNamed       = "named"
	ExportDefault     = "default"
	ExportAll         = "all"
	ExportNamespace   = "namespace"
	ExportAssignment  = "assignment"
)

// Export is one export form, in source order.
type Export struct {
	Name       string `json:"name"`
	Local      string `json:"local,omitempty"`
	Source     string `json:"source,omitempty"`
	Kind       string `json:"kind"`
	IsTypeOnly bool   `json:"isTypeOnly,omitempty"`
}

// Declaration is an ambient ("declare") declaration.
type Declaration struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	IsGlobal  bool   `json:"isGlobal"`
	Signature string `json:"signature,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// Module is a namespace or ambient module scope.
type Module struct {
	Name       string `json:"name"`
	IsDeclared bool   `json:"isDeclared"`
	IsExported bool   `json:"isExported"`
	*Scope
}
