package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/lnlab/lnremote/config"
	"github.com/lnlab/lnremote/manipulator"
	"github.com/lnlab/lnremote/transport"
)

func main() {
	log.SetFlags(log.Lshortfile)

	configPath := flag.String("config", "config.ini", "Path to the configuration file.")
	addr := flag.String("addr", "", "Address to bind the lnremote server to (overrides the config).")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	tr, err := transport.Open(cfg.Transport())
	if err != nil {
		log.Fatal(err)
	}

	var opts []manipulator.ChannelOption
	if cfg.Manipulator.ReadTimeout > 0 {
		opts = append(opts, manipulator.WithReadTimeout(cfg.Manipulator.ReadTimeout))
	}
	if cfg.Manipulator.Strict {
		opts = append(opts, manipulator.WithStrictValidation())
	}
	m := manipulator.New(manipulator.NewChannel(tr, opts...))
	defer m.Close()

	poller := manipulator.NewPoller(m, []int{1, 2, 3}, cfg.Server.PollInterval)
	defer poller.Close()

	api := newAPI(m, poller)

	log.Printf("listening on %s (%s connection)", cfg.Server.Addr, cfg.Manipulator.Connection)
	err = http.ListenAndServe(cfg.Server.Addr, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		if cfg.Manipulator.Debug {
			log.Printf("%s %s - %s", req.Method, req.URL.Path, req.RemoteAddr)
		}
		api.ServeHTTP(w, req)
	}))
	if err != nil {
		log.Fatal(err)
	}
}
