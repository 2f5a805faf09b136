package pricing

// Feature is an add-on that can be listed on a quote.
type Feature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var catalog = []Feature{
	{"Responsive Design", "Your website will look great on any device."},
	{"Customizable", "You can customize your website to your liking."},
	{"SEO Friendly", "Your website will be SEO friendly."},
	{"Analytics", "You can track your website traffic."},
	{"Security", "Your website will be secure."},
	{"Support", "You will have access to our support team."},
	{"Maintenance", "We will maintain your website for you."},
	{"Updates", "We will keep your website updated with the latest features."},
	{"Backup", "We will backup your website data."},
	{"Performance", "Your website will be performant."},
	{"Scalability", "Your website will be scalable."},
	{"Custom Domain", "You can use your own domain."},
	{"SSL Certificate", "Your website will be secure with an SSL certificate."},
	{"CDN", "Your website will be served with a CDN."},
	{"Firewall", "Your website will be protected with a firewall."},
	{"Dedicated Hosting", "Your website will be hosted on a dedicated server."},
	{"Cloud Hosting", "Your website will be hosted on the cloud."},
	{"Shared Hosting", "Your website will be hosted on a shared server."},
}

var byName = func() map[string]Feature {
	m := make(map[string]Feature, len(catalog))
	for _, f := range catalog {
		m[f.Name] = f
	}
	return m
}()

// Features returns a copy of the catalog in display order.
func Features() []Feature {
	out := make([]Feature, len(catalog))
	copy(out, catalog)
	return out
}

func LookupFeature(name string) (Feature, bool) {
	f, ok := byName[name]
	return f, ok
}
