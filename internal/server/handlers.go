package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/pipeline"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/technique"
	"github.com/aarontoms/Image-Filtering-and-Segmentation/internal/version"
)

const formatJSON = "json"

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(w, "Error encoding health response: %v\n", err)
	}
}

// techniquesHandler returns the fixed technique enumeration.
func (s *Server) techniquesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	all := technique.All()
	infos := make([]TechniqueInfo, len(all))
	for i, t := range all {
		infos[i] = TechniqueInfo{
			Name:        t.Name(),
			Kind:        string(t.Kind()),
			Description: t.Description(),
		}
	}

	response := TechniquesResponse{Techniques: infos, Count: len(infos)}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// processHandler runs the selected technique against an uploaded image.
func (s *Server) processHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, req, ok := s.parseProcessRequest(w, r)
	if !ok {
		processRequestsTotal.WithLabelValues(req.Technique, "error").Inc()
		return // error already written
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
	defer cancel()

	start := time.Now()
	res, err := s.processor.ProcessBytes(ctx, data, req)
	duration := time.Since(start)

	if err != nil {
		processRequestsTotal.WithLabelValues(req.Technique, "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("processing failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	processRequestsTotal.WithLabelValues(req.Technique, "success").Inc()
	processingDuration.WithLabelValues(req.Technique).Observe(duration.Seconds())

	s.writeProcessResponse(w, r, res)
}

// parseProcessRequest validates the multipart upload and builds the
// pipeline request. On failure the error response has been written and
// ok is false.
func (s *Server) parseProcessRequest(w http.ResponseWriter, r *http.Request) (data []byte, req pipeline.Request, ok bool) {
	req.Technique = "unknown"

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return nil, req, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return nil, req, false
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, req, false
	}
	uploadSizeBytes.Observe(float64(header.Size))

	data, err = io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return nil, req, false
	}

	name := r.FormValue("technique")
	if name == "" {
		s.writeErrorResponse(w, "No technique selected", http.StatusBadRequest)
		return nil, req, false
	}
	if _, err := technique.Get(name); err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return nil, req, false
	}
	req.Technique = name

	params, err := s.parseParams(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return nil, req, false
	}
	req.Params = params

	return data, req, true
}

// parseParams starts from the configured defaults and applies any
// per-request overrides from the form.
func (s *Server) parseParams(r *http.Request) (technique.Params, error) {
	p := s.processor.DefaultParams()

	overrides := []struct {
		field string
		set   func(string) error
	}{
		{"kernel_size", func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid kernel_size: %q", v)
			}
			p.GaussianKernel = n
			p.MedianKernel = n
			return nil
		}},
		{"sigma", func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid sigma: %q", v)
			}
			p.GaussianSigma = f
			return nil
		}},
		{"strength", func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid strength: %q", v)
			}
			p.SharpenStrength = f
			return nil
		}},
		{"block_size", func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid block_size: %q", v)
			}
			p.AdaptiveBlock = n
			return nil
		}},
		{"c", func(v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid c: %q", v)
			}
			p.AdaptiveC = f
			return nil
		}},
		{"clusters", func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid clusters: %q", v)
			}
			p.KMeansClusters = n
			return nil
		}},
	}

	for _, o := range overrides {
		if v := r.FormValue(o.field); v != "" {
			if err := o.set(v); err != nil {
				return p, err
			}
		}
	}

	return p, nil
}

// writeProcessResponse sends the result as PNG bytes, or JSON with a
// base64 payload when format=json is requested.
func (s *Server) writeProcessResponse(w http.ResponseWriter, r *http.Request, res *pipeline.Result) {
	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}

	if format == formatJSON {
		s.writeJSONResult(w, res)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=%q", res.Technique+".png"))
	w.Header().Set("X-Technique", res.Technique)
	w.Header().Set("X-Processing-Ms", strconv.FormatInt(res.Processing.TotalNs/1e6, 10))
	if err := png.Encode(w, res.Image); err != nil {
		// Headers are gone, nothing sensible left to send.
		return
	}
}

func (s *Server) writeJSONResult(w http.ResponseWriter, res *pipeline.Result) {
	encoded, err := encodeResultPNG(res)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("encoding failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ProcessResponse{
		Success: true,
		Result:  resultPayload(res, encoded),
	})
}

func resultPayload(res *pipeline.Result, encodedPNG string) *ProcessResult {
	return &ProcessResult{
		Technique:    res.Technique,
		Kind:         string(res.Kind),
		InputWidth:   res.InputWidth,
		InputHeight:  res.InputHeight,
		OutputWidth:  res.OutputWidth,
		OutputHeight: res.OutputHeight,
		Downscaled:   res.Downscaled,
		DurationMs:   res.Processing.TotalNs / 1e6,
		Image:        encodedPNG,
	}
}

func encodeResultPNG(res *pipeline.Result) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, res.Image); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(ProcessResponse{
		Success: false,
		Error:   message,
	})
}
