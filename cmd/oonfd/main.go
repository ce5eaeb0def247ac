// Command oonfd loads a configuration file, validates it against the
// daemon's schema, applies it once at startup to the process's logging
// and packet-writer state through the schema's delta handlers, and then
// serves Prometheus metrics until SIGINT or SIGTERM. The configuration is
// not reloaded while the process runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"

	"github.com/oonf-go/oonf/acl"
	"github.com/oonf-go/oonf/cfgcmd"
	"github.com/oonf-go/oonf/cfgdb"
	"github.com/oonf-go/oonf/cfgdelta"
	"github.com/oonf-go/oonf/cfgio"
	"github.com/oonf-go/oonf/cfgschema"
	"github.com/oonf-go/oonf/logcfg"
	"github.com/oonf-go/oonf/metrics"
	"github.com/oonf-go/oonf/netaddr"
	"github.com/oonf-go/oonf/pbb"
	"github.com/oonf-go/oonf/strarray"
)

// setFlags collects repeated `-set expr` command-line overrides, applied
// after the config file loads and before validation, giving the command
// line precedence over the config file.
type setFlags []string

func (f *setFlags) String() string { return strings.Join(*f, ",") }
func (f *setFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

// knownLogSources lists every component that reports through logcfg; kept
// here rather than discovered at runtime since it drives the `log.debug`/
// `log.info`/`log.warn` schema entries' validator.
var knownLogSources = []string{"core", "config", "codec", "writer"}

var (
	configURL   = flag.String("config", "", "Configuration source, as handler://location (default format is 'compact')")
	promPort    = flag.String("prom", ":9090", "Prometheus metrics export address and port")
	dumpAndExit = flag.Bool("dump", false, "Print the loaded configuration in compact format and exit")
	helpSchema  = flag.String("schemahelp", "", "Print schema help for the given type[name]. expression and exit")
	setExprs    setFlags
)

func init() {
	flag.Var(&setExprs, "set", "Apply a type[name].key=value configuration expression (repeatable)")
}

func main() {
	flag.Parse()
	flagx.ArgsFromEnv(flag.CommandLine)

	applier := logcfg.NewStdApplier()
	prevLogState := logcfg.State{}
	logSection, logEntries := logcfg.Section(knownLogSources, func(next logcfg.State) {
		rtx.Must(logcfg.Apply(applier, prevLogState, next), "could not apply log configuration")
		prevLogState = next
	})

	writer := pbb.NewWriter()
	ifaces := map[string]*acl.ACL{}

	schema := cfgschema.New()
	schema.AddSection(logSection, logEntries...)
	schema.AddSection(interfaceSection(writer, ifaces))

	registry := cfgio.NewRegistry()

	var db *cfgdb.Database
	if *configURL == "" {
		db = cfgdb.New()
	} else {
		var err error
		db, err = registry.Load(*configURL)
		rtx.Must(err, "could not load configuration from %q", *configURL)
	}
	db.SetSchema(schema)

	session := &cfgcmd.Session{DB: db, Schema: schema, Registry: registry}
	for _, expr := range setExprs {
		rtx.Must(session.Set(expr, false), "invalid -set expression %q", expr)
	}

	if *helpSchema != "" {
		rtx.Must(session.SchemaHelp(*helpSchema, os.Stdout), "could not print schema help for %q", *helpSchema)
		return
	}

	var diag fmtBuffer
	if err := schema.Validate(db, false, false, &diag); err != nil {
		fmt.Fprint(os.Stderr, diag.String())
		rtx.Must(err, "configuration failed validation")
	}

	if *dumpAndExit {
		rtx.Must(session.Save("compact:///dev/stdout"), "could not dump configuration")
		return
	}

	cfgdelta.New(schema).ApplyStartup(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	promSrv := prometheusx.MustStartPrometheus(*promPort)
	defer promSrv.Shutdown(ctx)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	applier.Close()
}

// interfaceSection declares the `interface` schema section: one named
// instance per network interface the writer should send packets on, with
// an MTU, a bind address, and an access-control list gating which peer
// addresses its packets may originate from.
func interfaceSection(writer *pbb.Writer, ifaces map[string]*acl.ACL) (*cfgschema.Section, []*cfgschema.Entry) {
	section := &cfgschema.Section{
		Type: "interface",
		Mode: cfgschema.Named,
	}

	mtuEntry := cfgschema.IntEntry(64, 65535)
	mtuEntry.Key = cfgschema.EntryKey{Key: "mtu"}
	mtuEntry.Default = defaultArray("1500")

	bindtoEntry := cfgschema.NetaddrEntry(false, netaddr.IPv4, netaddr.IPv6)
	bindtoEntry.Key = cfgschema.EntryKey{Key: "bindto"}

	aclEntry := cfgschema.StringListEntry()
	aclEntry.Key = cfgschema.EntryKey{Key: "acl"}
	aclEntry.Default = defaultArray()

	section.DeltaHandler = &cfgschema.DeltaHandler{
		Priority: 10,
		Callback: func(change cfgschema.SectionChange) {
			metrics.DeltaHandlerInvocationsTotal.WithLabelValues("interface").Inc()
			metrics.DeltaEntriesChangedHistogram.Observe(float64(countChanged(change)))

			if !change.PostExists {
				delete(ifaces, change.SectionName)
				return
			}

			mtu := 1500
			var tokens []string
			for _, e := range change.Entries {
				switch e.Key {
				case "mtu":
					if len(e.Post) > 0 {
						fmt.Sscanf(e.Post[0], "%d", &mtu)
					}
				case "acl":
					tokens = e.Post
				}
			}

			list := acl.New()
			for _, tok := range tokens {
				rtx.Must(list.Add(tok), "invalid acl token %q on interface %q", tok, change.SectionName)
			}
			ifaces[change.SectionName] = list

			writer.AddInterface(pbb.NewInterface(change.SectionName, mtu, true))
		},
	}

	return section, []*cfgschema.Entry{mtuEntry, bindtoEntry, aclEntry}
}

func countChanged(change cfgschema.SectionChange) int {
	n := 0
	for _, e := range change.Entries {
		if e.Changed {
			n++
		}
	}
	return n
}

func defaultArray(values ...string) *strarray.Array {
	return strarray.New(values...)
}

// fmtBuffer is an io.Writer accumulating validation diagnostics for a
// single Fprint at the end, instead of interleaving with log output.
type fmtBuffer struct {
	data []byte
}

func (b *fmtBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *fmtBuffer) String() string {
	return string(b.data)
}
