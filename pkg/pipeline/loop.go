// Package pipeline runs the per-message deal flow: find a product link in
// the inbound text, resolve it to a product id, look the product up through
// the affiliate API and publish the formatted reply.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/tinyland-inc/dealclaw/pkg/bus"
	"github.com/tinyland-inc/dealclaw/pkg/linkparse"
	"github.com/tinyland-inc/dealclaw/pkg/offer"
)

// Every failure class (unresolvable link, upstream miss, transport error)
// surfaces to the user as this one message; detail goes to the log only.
const notFoundReply = "Não consegui encontrar esse produto. Verifique o link e tente novamente."

const startReply = "Envie um link de produto da AliExpress e eu retorno uma mensagem formatada " +
	"com preço, desconto e link de afiliado.\n\n" +
	"Comandos disponíveis:\n" +
	"/start – Mostrar instruções.\n" +
	"/meuid – Mostrar seu ID.\n" +
	"/ajuda – Como usar o bot."

const helpReply = "Como usar:\n" +
	"1) Envie qualquer link de produto da AliExpress.\n" +
	"2) Eu busco as informações oficiais e gero o texto pronto.\n\n" +
	"Observações:\n" +
	"- Se o link já for afiliado, eu só formato.\n" +
	"- Se não for, eu gero com seu TRACKING_ID.\n" +
	"- Se o link for inválido, aviso para verificar."

// AffiliateClient is the outbound API surface the pipeline needs. It is an
// interface so tests can stub lookups without a gateway.
type AffiliateClient interface {
	GetProductDetail(ctx context.Context, productID string) (gjson.Result, bool, error)
	GenerateAffiliateLink(ctx context.Context, originalURL string) (string, bool, error)
}

// RedirectResolver resolves shortened links to their final landing URL.
type RedirectResolver interface {
	Resolve(ctx context.Context, rawURL string) (string, bool)
}

// Loop consumes inbound messages from the bus and publishes replies. Each
// message is handled independently under its own timeout; there is no state
// shared between messages beyond the injected collaborators.
type Loop struct {
	bus            *bus.MessageBus
	client         AffiliateClient
	resolver       RedirectResolver
	logger         *zap.Logger
	messageTimeout time.Duration
}

func NewLoop(msgBus *bus.MessageBus, client AffiliateClient, resolver RedirectResolver, logger *zap.Logger) *Loop {
	return &Loop{
		bus:            msgBus,
		client:         client,
		resolver:       resolver,
		logger:         logger,
		messageTimeout: 45 * time.Second,
	}
}

// Run consumes inbound messages until the context is cancelled or the bus
// closes.
func (l *Loop) Run(ctx context.Context) {
	for {
		msg, ok := l.bus.ConsumeInbound(ctx)
		if !ok {
			return
		}
		go l.handle(ctx, msg)
	}
}

func (l *Loop) handle(ctx context.Context, msg bus.InboundMessage) {
	ctx, cancel := context.WithTimeout(ctx, l.messageTimeout)
	defer cancel()

	for _, reply := range l.replies(ctx, msg) {
		err := l.bus.PublishOutbound(ctx, bus.OutboundMessage{
			Channel: msg.Channel,
			ChatID:  msg.ChatID,
			Content: reply,
		})
		if err != nil {
			l.logger.Warn("publishing reply", zap.String("channel", msg.Channel), zap.Error(err))
			return
		}
	}
}

func (l *Loop) replies(ctx context.Context, msg bus.InboundMessage) []string {
	text := strings.TrimSpace(msg.Content)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "/") {
		return l.commandReplies(text, msg.SenderID)
	}

	rawURL, ok := linkparse.FirstURL(text)
	if !ok {
		return nil
	}
	return l.dealReplies(ctx, rawURL)
}

func (l *Loop) commandReplies(text, senderID string) []string {
	command, _, _ := strings.Cut(text, " ")
	// Strip a bot mention suffix like /start@dealclaw_bot.
	command, _, _ = strings.Cut(command, "@")

	switch command {
	case "/start":
		return []string{startReply}
	case "/ajuda", "/help":
		return []string{helpReply}
	case "/meuid", "/myid":
		return []string{"Seu ID: " + senderID}
	default:
		return nil
	}
}

func (l *Loop) dealReplies(ctx context.Context, rawURL string) []string {
	productID, ok := linkparse.ExtractProductID(rawURL)
	if !ok {
		// Shortened or tracking link: follow redirects and retry.
		if finalURL, resolved := l.resolver.Resolve(ctx, rawURL); resolved {
			productID, ok = linkparse.ExtractProductID(finalURL)
		}
	}
	if !ok {
		return []string{notFoundReply}
	}

	product, found, err := l.client.GetProductDetail(ctx, productID)
	if err != nil {
		l.logger.Warn("product detail lookup failed",
			zap.String("product_id", productID), zap.Error(err))
		return []string{notFoundReply}
	}
	if !found {
		return []string{notFoundReply}
	}

	link := l.affiliateLink(ctx, rawURL)
	summary := offer.Summarize(product)

	replies := []string{offer.Format(summary, link)}
	if imageMsg, ok := offer.ImageMessage(summary); ok {
		replies = append(replies, imageMsg)
	}
	return replies
}

// affiliateLink always yields a usable URL: the original when it already
// carries affiliate markers, a freshly generated link when the gateway
// cooperates, and the original again as last resort.
func (l *Loop) affiliateLink(ctx context.Context, rawURL string) string {
	if linkparse.HasAffiliateMarkers(rawURL) {
		return rawURL
	}
	generated, ok, err := l.client.GenerateAffiliateLink(ctx, rawURL)
	if err != nil {
		l.logger.Warn("affiliate link generation failed", zap.Error(err))
		return rawURL
	}
	if !ok {
		return rawURL
	}
	return generated
}
