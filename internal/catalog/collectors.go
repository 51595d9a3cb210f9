package catalog

import "time"

// Collector describes a single RIPE RIS or RouteViews archive endpoint.
type Collector struct {
	Name    string
	Project string // "riperis" or "route-views"
	DataURL string
	// ActivatedOn is the date the collector started publishing archives.
	// The bundled catalog does not track per-collector activation dates
	// upstream, so this defaults to the zero time; crawls then fall back
	// to bootstrap-from-beginning behavior for collectors without a
	// recorded latest_ts_start (see internal/updater).
	ActivatedOn time.Time
}

// defaultCollectors is the bundled catalog of known RIPE RIS and RouteViews
// collectors, mirroring the upstream projects' published endpoint lists.
var defaultCollectors = []Collector{
	{Name: "rrc00", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc00"},
	{Name: "rrc01", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc01"},
	{Name: "rrc02", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc02"},
	{Name: "rrc03", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc03"},
	{Name: "rrc04", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc04"},
	{Name: "rrc05", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc05"},
	{Name: "rrc06", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc06"},
	{Name: "rrc07", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc07"},
	{Name: "rrc08", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc08"},
	{Name: "rrc09", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc09"},
	{Name: "rrc10", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc10"},
	{Name: "rrc11", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc11"},
	{Name: "rrc12", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc12"},
	{Name: "rrc13", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc13"},
	{Name: "rrc14", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc14"},
	{Name: "rrc15", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc15"},
	{Name: "rrc16", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc16"},
	{Name: "rrc18", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc18"},
	{Name: "rrc19", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc19"},
	{Name: "rrc20", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc20"},
	{Name: "rrc21", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc21"},
	{Name: "rrc22", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc22"},
	{Name: "rrc23", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc23"},
	{Name: "rrc24", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc24"},
	{Name: "rrc25", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc25"},
	{Name: "rrc26", Project: "riperis", DataURL: "https://data.ris.ripe.net/rrc26"},
	{Name: "amsix.ams", Project: "route-views", DataURL: "https://archive.routeviews.org/amsix.ams/bgpdata"},
	{Name: "cix.atl", Project: "route-views", DataURL: "https://archive.routeviews.org/cix.atl/bgpdata"},
	{Name: "decix.jhb", Project: "route-views", DataURL: "https://archive.routeviews.org/decix.jhb/bgpdata"},
	{Name: "iraq-ixp.bgw", Project: "route-views", DataURL: "https://archive.routeviews.org/iraq-ixp.bgw/bgpdata"},
	{Name: "pacwave.lax", Project: "route-views", DataURL: "https://archive.routeviews.org/pacwave.lax/bgpdata"},
	{Name: "pit.scl", Project: "route-views", DataURL: "https://archive.routeviews.org/pit.scl/bgpdata"},
	{Name: "pitmx.qro", Project: "route-views", DataURL: "https://archive.routeviews.org/pitmx.qro/bgpdata"},
	{Name: "route-views2", Project: "route-views", DataURL: "https://archive.routeviews.org/bgpdata"},
	{Name: "route-views3", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views3/bgpdata"},
	{Name: "route-views4", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views4/bgpdata"},
	{Name: "route-views5", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views5/bgpdata"},
	{Name: "route-views6", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views6/bgpdata"},
	{Name: "route-views7", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views7/bgpdata"},
	{Name: "route-views8", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views8/bgpdata"},
	{Name: "route-views.amsix", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.amsix/bgpdata"},
	{Name: "route-views.chicago", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.chicago/bgpdata"},
	{Name: "route-views.chile", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.chile/bgpdata"},
	{Name: "route-views.eqix", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.eqix/bgpdata"},
	{Name: "route-views.flix", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.flix/bgpdata"},
	{Name: "route-views.gorex", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.gorex/bgpdata"},
	{Name: "route-views.isc", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.isc/bgpdata"},
	{Name: "route-views.kixp", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.kixp/bgpdata"},
	{Name: "route-views.jinx", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.jinx/bgpdata"},
	{Name: "route-views.linx", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.linx/bgpdata"},
	{Name: "route-views.napafrica", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.napafrica/bgpdata"},
	{Name: "route-views.nwax", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.nwax/bgpdata"},
	{Name: "route-views.phoix", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.phoix/bgpdata"},
	{Name: "route-views.telxatl", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.telxatl/bgpdata"},
	{Name: "route-views.wide", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.wide/bgpdata"},
	{Name: "route-views.sydney", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.sydney/bgpdata"},
	{Name: "route-views.saopaulo", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.saopaulo/bgpdata"},
	{Name: "route-views2.saopaulo", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views2.saopaulo/bgpdata"},
	{Name: "route-views.sg", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.sg/bgpdata"},
	{Name: "route-views.perth", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.perth/bgpdata"},
	{Name: "route-views.peru", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.peru/bgpdata"},
	{Name: "route-views.sfmix", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.sfmix/bgpdata"},
	{Name: "route-views.siex", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.siex/bgpdata"},
	{Name: "route-views.soxrs", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.soxrs/bgpdata"},
	{Name: "route-views.mwix", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.mwix/bgpdata"},
	{Name: "route-views.rio", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.rio/bgpdata"},
	{Name: "route-views.fortaleza", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.fortaleza/bgpdata"},
	{Name: "route-views.gixa", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.gixa/bgpdata"},
	{Name: "route-views.bdix", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.bdix/bgpdata"},
	{Name: "route-views.bknix", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.bknix/bgpdata"},
	{Name: "route-views.ny", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.ny/bgpdata"},
	{Name: "route-views.uaeix", Project: "route-views", DataURL: "https://archive.routeviews.org/route-views.uaeix/bgpdata"},
	{Name: "interlan.otp", Project: "route-views", DataURL: "https://archive.routeviews.org/interlan.otp/bgpdata"},
	{Name: "kinx.icn", Project: "route-views", DataURL: "https://archive.routeviews.org/kinx.icn/bgpdata"},
	{Name: "namex.fco", Project: "route-views", DataURL: "https://archive.routeviews.org/namex.fco/bgpdata"},
}