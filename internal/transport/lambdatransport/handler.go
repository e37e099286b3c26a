package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/oncostat/dosepath/internal/app"
	"github.com/oncostat/dosepath/internal/transport/pathdto"
)

type Handler struct {
	svc app.PathsService
}

func NewHandler(svc app.PathsService) *Handler {
	return &Handler{svc: svc}
}

// Paths assumes the API Gateway already routed POST /paths.
func (h *Handler) Paths(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, map[string]any{"error": "invalid body", "details": err.Error()}), nil
	}

	var in pathdto.PathsRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, map[string]any{"error": "invalid json", "details": err.Error()}), nil
	}

	appReq := in.ToApp()

	tree, err := h.svc.Enumerate(appReq)
	if err != nil {
		return jsonResp(http.StatusBadRequest, map[string]any{"error": "paths failed", "details": err.Error()}), nil
	}

	resp := pathdto.PathsResponse{Tree: tree}
	if len(in.TrueProbTox) > 0 {
		crys, err := h.svc.Crystallise(appReq)
		if err != nil {
			return jsonResp(http.StatusBadRequest, map[string]any{"error": "crystallise failed", "details": err.Error()}), nil
		}
		resp.Crystallised = crys
	}

	return jsonResp(http.StatusOK, resp), nil
}

func readBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

func jsonResp(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(b),
	}
}
