// MIT License
//
// Copyright 2019 Burst Apps Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS
// IN THE SOFTWARE.

package flag

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/posener/complete"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/burst-apps-team/burstkit/burst"
	_log "github.com/burst-apps-team/burstkit/internal/log"
	"github.com/burst-apps-team/burstkit/node"
)

var Revision string

// Environment variable name prefix
const envNamePrefix = "BURSTKITD_"

var (
	envNames = map[string]string{
		"startscanheight":    "START_SCAN_HEIGHT",
		"scanretries":        "SCAN_RETRIES",
		"mininginfointerval": "MINING_INFO_INTERVAL",
		"debug":              "DEBUG",
		"cachesize":          "CACHE_SIZE",
		"watch":              "WATCH",
		"lockfile":           "LOCK_FILE",

		"apiaddress":  "API_ADDRESS",
		"apiusername": "API_USERNAME",
		"apipassword": "API_PASSWORD",
		"apitlscert":  "API_TLS_CERT",
		"apitlskey":   "API_TLS_KEY",
		"apimaxlimit": "API_MAX_LIMIT",
		"apitimeout":  "API_TIMEOUT",

		"s":           "NODE_SERVER",
		"nodetimeout": "NODE_TIMEOUT",
		"noderps":     "NODE_RPS",
	}
	defaults = map[string]interface{}{
		"startscanheight":    uint64(0),
		"scanretries":        int64(0),
		"mininginfointerval": node.DefaultMiningInfoInterval,
		"debug":              false,
		"cachesize":          uint64(360),
		"lockfile":           filepath.Join(os.TempDir(), "burstkitd.lock"),

		"apiaddress":  ":8126",
		"apiusername": "",
		"apipassword": "",
		"apitlscert":  "",
		"apitlskey":   "",
		"apimaxlimit": uint64(100),
		"apitimeout":  5 * time.Second,

		"s":           node.DefaultEndpoint,
		"nodetimeout": node.DefaultTimeout,
		"noderps":     float64(0),
	}
	descriptions = map[string]string{
		"startscanheight":    "Block height to start scanning for watched transactions on startup, 0 means the current height",
		"scanretries":        "Number of times to consecutively retry subscribing to mining info before exiting, use -1 for unlimited",
		"mininginfointerval": "Interval between mining info polls of the node",
		"debug":              "Log debug messages",
		"cachesize":          "Number of recent blocks to keep in memory",
		"watch":              "Comma separated account addresses whose transactions are recorded",
		"lockfile":           "Path of the lock file held while burstkitd is running",

		"apiaddress":  "IPAddr:port# to bind to for serving the burstkitd API",
		"apiusername": "Username required for connections to burstkitd API",
		"apipassword": "Password required for connections to burstkitd API",
		"apitlscert":  "Path to TLS certificate for the burstkitd API",
		"apitlskey":   "Path to TLS Key for the burstkitd API",
		"apimaxlimit": "Maximum number of blocks or transactions returned by one API call",
		"apitimeout":  "Maximum amount of time to allow API queries to complete",

		"s":           "scheme://host:port of the Burst node API",
		"nodetimeout": "Timeout for node API requests",
		"noderps":     "Maximum node API requests per second, 0 means unlimited",
	}
	flags = complete.Flags{
		"-startscanheight":    complete.PredictAnything,
		"-scanretries":        complete.PredictAnything,
		"-mininginfointerval": complete.PredictAnything,
		"-debug":              complete.PredictNothing,
		"-cachesize":          complete.PredictAnything,
		"-watch":              complete.PredictAnything,
		"-lockfile":           complete.PredictFiles("*.lock"),

		"-apiaddress":  complete.PredictAnything,
		"-apiusername": complete.PredictAnything,
		"-apipassword": complete.PredictAnything,
		"-apitlscert":  complete.PredictFiles("*.cert"),
		"-apitlskey":   complete.PredictFiles("*.key"),
		"-apimaxlimit": complete.PredictAnything,
		"-apitimeout":  complete.PredictAnything,

		"-s":           complete.PredictSet(node.DefaultEndpoint),
		"-nodetimeout": complete.PredictAnything,
		"-noderps":     complete.PredictAnything,

		"-y":                   complete.PredictNothing,
		"-installcompletion":   complete.PredictNothing,
		"-uninstallcompletion": complete.PredictNothing,
	}

	startScanHeight    uint64
	StartScanHeight    uint32
	ScanRetries        int64
	MiningInfoInterval time.Duration
	LogDebug           bool
	CacheSize          uint64
	Watch              AddressList
	LockFile           string

	APIAddress  string
	APIMaxLimit uint64
	APITimeout  time.Duration

	NodeServer  string
	NodeTimeout time.Duration
	NodeRPS     float64

	flagset    map[string]bool
	log        *logrus.Entry
	Completion *complete.Complete

	HasAuth  bool
	Username string
	Password string

	HasTLS      bool
	TLSCertFile string
	TLSKeyFile  string
)

func init() {
	flagVar(&startScanHeight, "startscanheight")
	flagVar(&ScanRetries, "scanretries")
	flagVar(&MiningInfoInterval, "mininginfointerval")
	flagVar(&LogDebug, "debug")
	flagVar(&CacheSize, "cachesize")
	flagVar(&Watch, "watch")
	flagVar(&LockFile, "lockfile")

	flagVar(&APIAddress, "apiaddress")
	flagVar(&APIMaxLimit, "apimaxlimit")
	flagVar(&APITimeout, "apitimeout")
	flagVar(&Username, "apiusername")
	flagVar(&Password, "apipassword")
	flagVar(&TLSCertFile, "apitlscert")
	flagVar(&TLSKeyFile, "apitlskey")

	flagVar(&NodeServer, "s")
	flagVar(&NodeTimeout, "nodetimeout")
	flagVar(&NodeRPS, "noderps")

	// Add flags for self installing the CLI completion tool
	Completion = complete.New(os.Args[0], complete.Command{Flags: flags})
	Completion.CLI.InstallName = "installcompletion"
	Completion.CLI.UninstallName = "uninstallcompletion"
	Completion.AddFlags(nil)
}

func Parse() {
	flag.Parse()
	flagset = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { flagset[f.Name] = true })

	// Load options from environment variables if they haven't been
	// specified on the command line.
	loadFromEnv(&startScanHeight, "startscanheight")
	loadFromEnv(&ScanRetries, "scanretries")
	loadFromEnv(&MiningInfoInterval, "mininginfointerval")
	loadFromEnv(&LogDebug, "debug")
	loadFromEnv(&CacheSize, "cachesize")
	loadFromEnv(&Watch, "watch")
	loadFromEnv(&LockFile, "lockfile")

	loadFromEnv(&APIAddress, "apiaddress")
	loadFromEnv(&APIMaxLimit, "apimaxlimit")
	loadFromEnv(&APITimeout, "apitimeout")
	loadFromEnv(&Username, "apiusername")
	loadFromEnv(&Password, "apipassword")
	loadFromEnv(&TLSCertFile, "apitlscert")
	loadFromEnv(&TLSKeyFile, "apitlskey")

	loadFromEnv(&NodeServer, "s")
	loadFromEnv(&NodeTimeout, "nodetimeout")
	loadFromEnv(&NodeRPS, "noderps")

	if LogDebug {
		_log.Level = logrus.DebugLevel
	}
	log = _log.New("flag").Entry
}

func Validate() {
	// Redact private data from debug output.
	apiPassword := `""`
	if len(Password) > 0 {
		apiPassword = "<redacted>"
	}

	log.Debugf("-apiaddress         %#v", APIAddress)
	log.Debugf("-apimaxlimit        %v", APIMaxLimit)
	log.Debugf("-apitimeout         %v", APITimeout)
	debugPrintln()

	log.Debugf("-startscanheight    %v", startScanHeight)
	log.Debugf("-scanretries        %v", ScanRetries)
	log.Debugf("-mininginfointerval %v", MiningInfoInterval)
	log.Debugf("-cachesize          %v", CacheSize)
	log.Debugf("-watch              %v", Watch)
	log.Debugf("-lockfile           %#v", LockFile)
	debugPrintln()

	log.Debugf("-s                  %q", NodeServer)
	log.Debugf("-nodetimeout        %v", NodeTimeout)
	log.Debugf("-noderps            %v", NodeRPS)
	debugPrintln()

	log.Debugf("-apiusername        %#v", Username)
	log.Debugf("-apipassword        %v", apiPassword)
	log.Debugf("-apitlscert         %#v", TLSCertFile)
	log.Debugf("-apitlskey          %#v", TLSKeyFile)
	debugPrintln()

	if startScanHeight > 1<<32-1 {
		log.Fatalf("-startscanheight %v: out of range", startScanHeight)
	}
	StartScanHeight = uint32(startScanHeight)

	var err error
	LockFile, err = filepath.Abs(LockFile)
	if err != nil {
		log.Fatalf("-lockfile %v: %v", LockFile, err)
	}

	if CacheSize == 0 {
		log.Fatal("-cachesize must be greater than 0")
	}
	if APIMaxLimit == 0 {
		log.Fatal("-apimaxlimit must be greater than 0")
	}
	if NodeRPS < 0 {
		log.Fatal("-noderps must not be negative")
	}

	if len(Username) > 0 || len(Password) > 0 {
		if len(Username) == 0 || len(Password) == 0 {
			log.Fatal("-apiusername and -apipassword must be used together")
		}
		HasAuth = true
	}
	if len(TLSCertFile) > 0 || len(TLSKeyFile) > 0 {
		if len(TLSCertFile) == 0 || len(TLSKeyFile) == 0 {
			log.Fatal("-apitlscert and -apitlskey must be used together")
		}
		HasTLS = true
	}
}

// NodeConfig returns the node.Config selected by the flags.
func NodeConfig() node.Config {
	return node.Config{
		Endpoint:           NodeServer,
		UserAgent:          "burstkitd/" + node.Version,
		Timeout:            NodeTimeout,
		RequestsPerSecond:  NodeRPS,
		MiningInfoInterval: MiningInfoInterval,
		Registerer:         prometheus.DefaultRegisterer,
		Log:                _log.New("node").Entry,
	}
}

func flagVar(v interface{}, name string) {
	dflt := defaults[name]
	desc := description(name)
	switch v := v.(type) {
	case *string:
		flag.StringVar(v, name, dflt.(string), desc)
	case *time.Duration:
		flag.DurationVar(v, name, dflt.(time.Duration), desc)
	case *uint64:
		flag.Uint64Var(v, name, dflt.(uint64), desc)
	case *int64:
		flag.Int64Var(v, name, dflt.(int64), desc)
	case *float64:
		flag.Float64Var(v, name, dflt.(float64), desc)
	case *bool:
		flag.BoolVar(v, name, dflt.(bool), desc)
	case flag.Value:
		flag.Var(v, name, desc)
	}
}

func loadFromEnv(v interface{}, flagName string) {
	if flagset[flagName] {
		return
	}
	eName := envName(flagName)
	eVar, ok := os.LookupEnv(eName)
	if len(eVar) > 0 {
		switch v := v.(type) {
		case flag.Value:
			if err := v.Set(eVar); err != nil {
				fatalf("Environment Variable %v: %v", eName, err)
			}
		case *string:
			*v = eVar
		case *time.Duration:
			duration, err := time.ParseDuration(eVar)
			if err != nil {
				fatalf("Environment Variable %v: "+
					"time.ParseDuration(\"%v\"): %v",
					eName, eVar, err)
			}
			*v = duration
		case *uint64:
			val, err := strconv.ParseUint(eVar, 10, 64)
			if err != nil {
				fatalf("Environment Variable %v: "+
					"strconv.ParseUint(\"%v\", 10, 64): %v",
					eName, eVar, err)
			}
			*v = val
		case *int64:
			val, err := strconv.ParseInt(eVar, 10, 64)
			if err != nil {
				fatalf("Environment Variable %v: "+
					"strconv.ParseInt(\"%v\", 10, 64): %v",
					eName, eVar, err)
			}
			*v = val
		case *float64:
			val, err := strconv.ParseFloat(eVar, 64)
			if err != nil {
				fatalf("Environment Variable %v: "+
					"strconv.ParseFloat(\"%v\", 64): %v",
					eName, eVar, err)
			}
			*v = val
		case *bool:
			if ok {
				*v = true
			}
		}
	}
}

// fatalf is used before the flag logger is set up.
func fatalf(format string, args ...interface{}) {
	_log.New("flag").Fatalf(format, args...)
}

func debugPrintln() {
	if LogDebug {
		fmt.Println()
	}
}

func envName(flagName string) string {
	return envNamePrefix + envNames[flagName]
}
func description(flagName string) string {
	return fmt.Sprintf("%s\nEnvironment variable: %v",
		descriptions[flagName], envName(flagName))
}

// AddressList is a flag.Value holding comma separated account addresses in
// either Reed-Solomon or numeric form.
type AddressList []burst.Address

func (l AddressList) String() string {
	strs := make([]string, len(l))
	for i, adr := range l {
		strs[i] = adr.String()
	}
	return strings.Join(strs, ",")
}

func (l *AddressList) Set(s string) error {
	seen := make(map[burst.Address]struct{}, len(*l))
	for _, adr := range *l {
		seen[adr] = struct{}{}
	}
	for _, str := range strings.Split(s, ",") {
		if len(strings.TrimSpace(str)) == 0 {
			continue
		}
		adr, err := burst.ParseAddress(str)
		if err != nil {
			return err
		}
		if _, ok := seen[adr]; ok {
			return fmt.Errorf("duplicate address: %v", adr)
		}
		seen[adr] = struct{}{}
		*l = append(*l, adr)
	}
	return nil
}
