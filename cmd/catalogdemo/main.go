// Command catalogdemo runs a small HTTP catalog service over one
// multiindex.MultiIndex, exercising insert/find/find-by-category/update/
// delete/compact plus a compressed msgpack snapshot endpoint.
package main

import (
	"flag"
	"log"
	"net/http"
)

func main() {
	port := flag.String("port", "8090", "Server port")
	flag.Parse()

	srv := newCatalogServer()

	log.Printf("INFO: starting catalogdemo server on :%s", *port)
	if err := http.ListenAndServe(":"+*port, srv.Router()); err != nil {
		log.Fatalf("ERROR: server failed: %v", err)
	}
}
