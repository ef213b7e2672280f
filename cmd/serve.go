package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jsphweid/markovmidi/logger"
	"github.com/jsphweid/markovmidi/midi"
	"github.com/jsphweid/markovmidi/model"
	"github.com/jsphweid/markovmidi/pipeline"
	"github.com/jsphweid/markovmidi/sequencer"
	"github.com/jsphweid/markovmidi/util"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func init() {
	serveCmd.Flags().StringVar(&flags.port, "port", "8080", "port to listen on")
	addGenerationFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serves generation over HTTP",
	Long:  `Loads the indexed corpus once and generates a new MIDI file per request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := LoadServeFiles(cfg.CorpusPath, cfg.Generation)
		if err != nil {
			return err
		}
		logger.Info("starting server", logger.Fields{"port": cfg.Port})
		return http.ListenAndServe(":"+cfg.Port, s.Handler())
	},
}

// Server shares one read-only corpus between requests; every request is its
// own generation run.
type Server struct {
	corpus     *model.Corpus
	generation sequencer.Config
}

func LoadServeFiles(path string, gen sequencer.Config) (*Server, error) {
	learned, err := util.ReadBinary[model.Corpus](path)
	if err != nil {
		return nil, err
	}
	return &Server{corpus: &learned, generation: gen}, nil
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/generate", s.HandleGenerate).Methods("POST")
	router.HandleFunc("/voices", s.HandleVoices).Methods("GET")
	return cors.Default().Handler(router)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

func applyRequest(gen sequencer.Config, req model.GenerateRequest) sequencer.Config {
	if req.MaxGlobalPolyphony != nil {
		gen.MaxGlobalPolyphony = *req.MaxGlobalPolyphony
	}
	if req.MaxVoices != nil {
		gen.MaxVoices = *req.MaxVoices
	}
	if req.GridStepTicks != nil {
		gen.GridStepTicks = *req.GridStepTicks
	}
	if req.Bars != nil {
		gen.Bars = *req.Bars
	}
	if req.OnsetProbability != nil {
		gen.OnsetProbability = *req.OnsetProbability
	}
	return gen
}

func (s *Server) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var input model.GenerateRequest
	if len(bytes.TrimSpace(reqBody)) > 0 {
		if err := json.Unmarshal(reqBody, &input); err != nil {
			writeError(w, http.StatusBadRequest, "could not unmarshal request body: "+err.Error())
			return
		}
	}

	var seed int64
	if input.Seed != nil {
		seed = *input.Seed
	}
	rng, seed := newRandom(seed)
	res, err := pipeline.Generate(s.corpus, applyRequest(s.generation, input), rng)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if res.NothingToGenerate {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	buf := new(bytes.Buffer)
	if err := midi.WriteSong(buf, res.Song); err != nil {
		logger.Error("could not encode song", err, logger.Fields{"seed": seed})
		writeError(w, http.StatusInternalServerError, "could not encode song")
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("X-Seed", strconv.FormatInt(seed, 10))
	w.Write(buf.Bytes())
}

func (s *Server) HandleVoices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pipeline.Describe(s.corpus))
}
