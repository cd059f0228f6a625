// Package worker serves recolor requests received over MQTT.
//
// Requests arrive on <prefix>/recolor/request and each result is published
// to <prefix>/recolor/response/<requestId>. Image payloads are encoded files
// (JPEG or PNG) carried as base64 strings in the JSON body.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ironsheep/facade-recolor/internal/imaging"
	"github.com/ironsheep/facade-recolor/internal/recolor"
	"github.com/ironsheep/facade-recolor/internal/segmentation"
	"github.com/ironsheep/facade-recolor/internal/visualizer"
)

// PublishTimeout bounds how long a response publish may wait on the broker.
const PublishTimeout = 10 * time.Second

// Request is the JSON body of a recolor request. []byte fields are base64 in
// JSON.
type Request struct {
	RequestID string   `json:"requestId"`
	Image     []byte   `json:"image"`
	Mask      []byte   `json:"mask,omitempty"`
	Labels    []byte   `json:"labels,omitempty"`
	Scene     string   `json:"scene,omitempty"`
	ColorHex  string   `json:"colorHex"`
	Alpha     *float64 `json:"alpha,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// Response is the JSON body published for every request with an id.
type Response struct {
	RequestID string     `json:"requestId"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	Width     int        `json:"width,omitempty"`
	Height    int        `json:"height,omitempty"`
	Coverage  float64    `json:"coverage,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
}

// Publisher sends a message; mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Worker renders requests with a shared Visualizer, running at most a fixed
// number at once.
type Worker struct {
	viz         *visualizer.Visualizer
	topicPrefix string
	sem         chan struct{}
	wg          sync.WaitGroup
}

// New returns a worker for topics below topicPrefix that runs up to workers
// requests concurrently.
func New(viz *visualizer.Visualizer, topicPrefix string, workers int) *Worker {
	if workers < 1 {
		workers = 1
	}
	return &Worker{
		viz:         viz,
		topicPrefix: topicPrefix,
		sem:         make(chan struct{}, workers),
	}
}

// RequestTopic is where the worker listens.
func (w *Worker) RequestTopic() string {
	return w.topicPrefix + "/recolor/request"
}

// ResponseTopic is where the result for requestID is published.
func (w *Worker) ResponseTopic(requestID string) string {
	return w.topicPrefix + "/recolor/response/" + requestID
}

// Subscribe registers the request handler on c. Call it from the client's
// OnConnect hook so the subscription survives reconnects.
func (w *Worker) Subscribe(ctx context.Context, c mqtt.Client) error {
	token := c.Subscribe(w.RequestTopic(), 0, func(c mqtt.Client, m mqtt.Message) {
		w.Dispatch(ctx, c, m.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribing to %s: %w", w.RequestTopic(), err)
	}
	log.Println("[MQTT]", "subscribed to", w.RequestTopic())
	return nil
}

// Dispatch handles payload on its own goroutine once a slot is free. It
// blocks while all slots are busy and drops the message if ctx ends first.
// ctx only gates admission: an accepted request runs to completion after ctx
// is canceled, so Wait drains in-flight work instead of failing it.
//
// Blocking here applies back-pressure to the caller. When called from a paho
// handler, set ClientOptions.SetOrderMatters(false) so a full pool does not
// stall the client's message router.
func (w *Worker) Dispatch(ctx context.Context, pub Publisher, payload []byte) {
	select {
	case w.sem <- struct{}{}:
	case <-ctx.Done():
		log.Println("[RPC]", "dropping request, shutting down")
		return
	}

	w.wg.Add(1)
	go func() {
		defer func() {
			<-w.sem
			w.wg.Done()
		}()
		w.HandleMessage(ctx, pub, payload)
	}()
}

// Wait blocks until every dispatched request has finished.
func (w *Worker) Wait() {
	w.wg.Wait()
}

// HandleMessage decodes one request, renders it and publishes the response.
// Payloads that are not JSON or carry no request id are logged and dropped.
// Cancellation of ctx is ignored; its values are kept.
func (w *Worker) HandleMessage(ctx context.Context, pub Publisher, payload []byte) {
	ctx = context.WithoutCancel(ctx)

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Println("[RPC]", "error parsing request:", err)
		return
	}
	if req.RequestID == "" {
		log.Println("[RPC]", "request without requestId dropped")
		return
	}

	reqID := req.RequestID
	log.Println("[RPC]", reqID, "request received, color", req.ColorHex)

	resp := Response{RequestID: reqID}
	if res, err := w.process(ctx, &req); err != nil {
		log.Println("[RPC]", reqID, "failed:", err)
		resp.Error = &ErrorBody{Kind: recolor.KindOf(err), Message: err.Error()}
	} else {
		resp.ImageURL = res.URL
		resp.Width, resp.Height = res.Width, res.Height
		resp.Coverage = res.Coverage
	}

	body, err := json.Marshal(resp)
	if err != nil {
		log.Println("[RPC]", reqID, "error encoding response:", err)
		return
	}

	topic := w.ResponseTopic(reqID)
	log.Println("[RPC]", reqID, "sending response to", topic)
	token := pub.Publish(topic, 0, false, body)
	if !token.WaitTimeout(PublishTimeout) {
		log.Println("[RPC]", reqID, "timed out publishing response")
		return
	}
	if err := token.Error(); err != nil {
		log.Println("[RPC]", reqID, "error publishing response:", err)
		return
	}
	log.Println("[RPC]", reqID, "response published successfully")
}

func (w *Worker) process(ctx context.Context, req *Request) (*visualizer.Result, error) {
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("%w: no image in request", recolor.ErrInvalidImage)
	}
	img, err := imaging.Decode(req.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recolor.ErrInvalidImage, err)
	}

	scene, err := segmentation.ParseScene(req.Scene)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recolor.ErrInvalidParameter, err)
	}

	vreq := visualizer.Request{Image: img, Scene: scene, ColorHex: req.ColorHex, Alpha: req.Alpha}
	switch {
	case len(req.Mask) > 0:
		if vreq.Mask, err = imaging.Decode(req.Mask); err != nil {
			return nil, fmt.Errorf("%w: %v", recolor.ErrInvalidMask, err)
		}
	case len(req.Labels) > 0:
		lm, err := imaging.Decode(req.Labels)
		if err != nil {
			return nil, fmt.Errorf("%w: label map: %v", recolor.ErrInvalidMask, err)
		}
		vreq.Labels = segmentation.LabelMapFromImage(lm)
	}

	return w.viz.Visualize(ctx, vreq)
}
