// Command central-registry is a stand-in for the national registry used in
// local development. It keeps users and documents in memory and reproduces
// the duplicate-registration response verbatim, including the Spanish
// message peripheral nodes match on.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

type user struct {
	Cedula       string `json:"cedula"`
	DocumentType string `json:"tipoDocumento"`
	FirstName    string `json:"primerNombre"`
	FirstSurname string `json:"primerApellido"`
}

type registry struct {
	mu      sync.Mutex
	users   map[string]user
	nextDoc int
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	flag.Parse()

	reg := &registry{users: make(map[string]user)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/usuarios/verificar/{cedula}", reg.handleVerify)
	mux.HandleFunc("POST /api/usuarios/registrar", reg.handleRegister)
	mux.HandleFunc("GET /api/usuarios/{cedula}", reg.handleGet)
	mux.HandleFunc("DELETE /api/usuarios/{cedula}/clinica/{rut}", reg.handleUnlink)
	mux.HandleFunc("POST /historia-clinica/documentos", reg.handleDocument)

	log.Printf("mock central registry listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func (r *registry) handleVerify(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	_, ok := r.users[req.PathValue("cedula")]
	r.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"existe": ok})
}

func (r *registry) handleRegister(w http.ResponseWriter, req *http.Request) {
	var u user
	if err := json.NewDecoder(req.Body).Decode(&u); err != nil || u.Cedula == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"mensaje": "solicitud inválida"})
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Cedula]; ok {
		// Same shape and text as the real registry's duplicate response.
		writeJSON(w, http.StatusConflict, map[string]string{
			"mensaje": "El usuario ya está registrado en el sistema",
		})
		return
	}
	r.users[u.Cedula] = u
	writeJSON(w, http.StatusOK, u)
}

func (r *registry) handleGet(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	u, ok := r.users[req.PathValue("cedula")]
	r.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (r *registry) handleUnlink(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	_, ok := r.users[req.PathValue("cedula")]
	r.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"mensaje": "desvinculado"})
}

func (r *registry) handleDocument(w http.ResponseWriter, req *http.Request) {
	var doc struct {
		Cedula string `json:"cedula"`
	}
	if err := json.NewDecoder(req.Body).Decode(&doc); err != nil || doc.Cedula == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"mensaje": "solicitud inválida"})
		return
	}

	r.mu.Lock()
	r.nextDoc++
	historyID := "HIST-" + strings.ToUpper(doc.Cedula) + "-" + strconv.Itoa(r.nextDoc)
	r.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]string{"historiaId": historyID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
