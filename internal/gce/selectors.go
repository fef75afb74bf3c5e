package gce

type Selector string

const (
	ProjectID        = Selector("project-id")
	Image            = Selector("image")
	InstanceName     = Selector("instance-name")
	InstanceID       = Selector("instance-id")
	InstanceType     = Selector("instance-type")
	LocalHostname    = Selector("local-hostname")
	LocalIPv4        = Selector("local-ipv4")
	PublicIPv4       = Selector("public-ipv4")
	MAC              = Selector("mac")
	AvailabilityZone = Selector("availability-zone")
	Description      = Selector("description")
	Disks            = Selector("disks")
	ServiceAccount   = Selector("service-account")
	InstanceTemplate = Selector("instance-template")
	CreatedBy        = Selector("created-by")
	Tags             = Selector("tags")
	UserData         = Selector("user-data")
)

func (s Selector) String() string { return string(s) }

// Source says where a selector's value comes from.
type Source int

const (
	SourceMetadata Source = iota
	SourceHostname
	SourceDisks
)

type Spec struct {
	Selector  Selector
	Shorthand string
	Label     string
	Path      string
	Source    Source
	Rule      Rule
	Usage     string
}

const networkInterfaces = "instance/network-interfaces/?recursive=true"

// specs is kept in bulk report order.
var specs = []Spec{
	{ProjectID, "p", "project-id", "project/project-id", SourceMetadata, Raw, "Project ID"},
	{Image, "a", "image", "instance/image", SourceMetadata, LastPathSegment, "Boot image name"},
	{InstanceName, "n", "instance-name", "instance/hostname", SourceMetadata, FirstHostnameLabel, "Instance name"},
	{InstanceID, "i", "instance-id", "instance/id", SourceMetadata, Raw, "Numeric instance ID"},
	{InstanceType, "t", "instance-type", "instance/machine-type", SourceMetadata, LastPathSegment, "Machine type"},
	{LocalHostname, "h", "local-hostname", "", SourceHostname, Raw, "Hostname reported by the operating system"},
	{LocalIPv4, "o", "local-ipv4", networkInterfaces, SourceMetadata, JSONField("[0]", "ip"), "Internal IPv4 address of the first interface"},
	{PublicIPv4, "v", "public-ipv4", networkInterfaces, SourceMetadata, JSONField("[0]", "accessConfigs", "[0]", "externalIp"), "External IPv4 address of the first interface"},
	{MAC, "m", "mac", "instance/network-interfaces/0/mac", SourceMetadata, Raw, "MAC address of the first interface"},
	{AvailabilityZone, "z", "availability-zone", "instance/zone", SourceMetadata, LastPathSegment, "Zone"},
	{Description, "e", "description", "instance/description", SourceMetadata, Raw, "Instance description"},
	{Disks, "d", "disks", "instance/disks/", SourceDisks, nil, "Attached disks"},
	{ServiceAccount, "s", "service-account", "instance/service-accounts/", SourceMetadata, ServiceAccountExtract, "Service account email"},
	{InstanceTemplate, "l", "instance-template", "instance/attributes/instance-template", SourceMetadata, LastPathSegment, "Instance template"},
	{CreatedBy, "c", "created-by", "instance/attributes/created-by", SourceMetadata, LastPathSegment, "Managed instance group that created the instance"},
	{Tags, "g", "tags", "instance/tags", SourceMetadata, JoinList(","), "Network tags"},
	{UserData, "u", "user-data", "instance/attributes/user-data", SourceMetadata, Raw, "User data attribute"},
}

var specIndex = func() map[Selector]int {
	m := make(map[Selector]int, len(specs))
	for ix, s := range specs {
		m[s.Selector] = ix
	}
	return m
}()

// Specs returns every selector spec in bulk report order.
func Specs() []Spec {
	return append([]Spec(nil), specs...)
}

// All returns every selector in bulk report order.
func All() []Selector {
	all := make([]Selector, 0, len(specs))
	for _, s := range specs {
		all = append(all, s.Selector)
	}
	return all
}

func Lookup(sel Selector) (Spec, bool) {
	ix, ok := specIndex[sel]
	if !ok {
		return Spec{}, false
	}
	return specs[ix], true
}
