package telemetry

import (
	"context"
	"fmt"
	"slc-balance/pkg/restyutil"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
)

// HttpOutput receives every formatted http exchange, see restyutil.FilesystemOutput.
type HttpOutput interface {
	Write(id string, contents string)
}

type instrumentResty struct {
	tel       API
	tracer    trace.Tracer
	output    HttpOutput
	idcounter *uint64
}

// InstrumentResty reports every request made by client to tel, opens a span
// per request and, if output is not nil, writes the redacted exchange to it.
func InstrumentResty(client *resty.Client, tel API, output HttpOutput) {
	var idcounter uint64
	i := instrumentResty{
		tel:       tel,
		tracer:    otel.Tracer("slc-balance/resty"),
		output:    output,
		idcounter: &idcounter,
	}

	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

type reqCtxKeyType int

var reqCtxKey reqCtxKeyType

type reqCtx struct {
	id uint64
	// startTime does not depend on the absolute time, only on the difference.
	startTime time.Time
}

func (i instrumentResty) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	ctx, _ := i.tracer.Start(req.Context(), fmt.Sprintf("http %s", req.Method))

	id := atomic.AddUint64(i.idcounter, 1)
	ctx = context.WithValue(ctx, reqCtxKey, reqCtx{
		id:        id,
		startTime: time.Now(),
	})
	i.tel.ReportDebug(report_resty_request, id, req.Method, req.URL)

	req.SetContext(ctx)
	return nil
}

func (i instrumentResty) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if res.RawResponse != nil {
		span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
	}
	// RawRequest is nil in onBeforeRequest so request attributes are set here
	if res.Request.RawRequest != nil {
		span.SetAttributes(httpconv.ClientRequest(res.Request.RawRequest)...)
	}

	reqCtx, ok := ctx.Value(reqCtxKey).(reqCtx)
	if !ok {
		return nil
	}

	i.tel.ReportDebug(
		report_resty_response,
		reqCtx.id,
		time.Since(reqCtx.startTime).String(),
		res.Status(),
	)
	if i.output != nil {
		i.output.Write(strconv.FormatUint(reqCtx.id, 10), restyutil.FormatHttpMessage(res))
	}

	return nil
}

func (i instrumentResty) onError(req *resty.Request, err error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, "request failed")

	var duration time.Duration
	if reqCtx, ok := ctx.Value(reqCtxKey).(reqCtx); ok {
		duration = time.Since(reqCtx.startTime)
	}

	i.tel.ReportBroken(
		report_resty_response,
		err,
		req.Method,
		req.URL,
		duration,
	)
}
