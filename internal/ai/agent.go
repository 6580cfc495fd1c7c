package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-taller/internal/database"
	"go-taller/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// RunAgent answers workshop questions with tool calls against the live
// database: part inventory, ticket status/balance, and revenue.
func RunAgent(db *gorm.DB, userMessage string, apiKey string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")
	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the assistant of a device repair shop.

RULES:
1. PARTS: For any question about a part's price, stock or details you MUST
   call 'check_inventory' and read the JSON to answer. Do NOT say you cannot
   get it.
2. TICKETS: For any question about a repair ticket (status, diagnosis,
   outstanding balance) call 'get_ticket' with the ticket number the user
   gives you (format TCK-XXXXXXXX).
3. REVENUE: For revenue or workload questions use 'get_revenue_report'.
4. Answer in the user's language.

USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_inventory",
					Description: "Get the full parts inventory. Use this to find ANY part details like SKU, Name, Price, Cost or Stock.",
				},
				{
					Name:        "get_ticket",
					Description: "Get a repair ticket by its number: status, problem, diagnosis and outstanding balance.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"numero": {Type: genai.TypeString, Description: "Ticket number, e.g. TCK-1A2B3C4D"},
						},
						Required: []string{"numero"},
					},
				},
				{
					Name:        "get_revenue_report",
					Description: "Get collected payments, sales and ticket counts for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			switch funcCall.Name {
			case "check_inventory":
				return executeCheckInventory(ctx, db, session)
			case "get_ticket":
				return executeGetTicket(ctx, db, session, funcCall), nil
			case "get_revenue_report":
				return executeRevenueReport(ctx, db, session, funcCall), nil
			}
		}
	}

	return printResponse(resp), nil
}

// --- TOOL EXECUTORS ---

func executeCheckInventory(ctx context.Context, db *gorm.DB, session *genai.ChatSession) (string, error) {
	var productos []models.Producto
	db.Where("activo = ?", true).Find(&productos)

	type SimplePart struct {
		ID     uint    `json:"id"`
		SKU    string  `json:"sku"`
		Nombre string  `json:"nombre"`
		Stock  int     `json:"stock"`
		Precio float64 `json:"precio_venta"`
		Costo  float64 `json:"costo_promedio"`
	}
	var simpleList []SimplePart
	for _, p := range productos {
		simpleList = append(simpleList, SimplePart{
			ID:     p.ID,
			SKU:    p.SKU,
			Nombre: p.Nombre,
			Stock:  p.Stock,
			Precio: p.PrecioVenta,
			Costo:  p.PrecioPromedio,
		})
	}
	jsonBytes, _ := json.Marshal(simpleList)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "check_inventory",
		Response: map[string]interface{}{"inventory": string(jsonBytes)},
	})
	if err != nil {
		return "", err
	}
	return printResponse(finalResp), nil
}

func executeGetTicket(ctx context.Context, db *gorm.DB, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	numero, _ := funcCall.Args["numero"].(string)

	var ticket models.Ticket
	err := db.Preload("Estado").Preload("Reparacion").Preload("Presupuesto").
		Where("numero = ?", numero).First(&ticket).Error

	response := map[string]interface{}{}
	if err != nil {
		response["status"] = "Ticket not found"
	} else {
		response["numero"] = ticket.Numero
		response["estado"] = ticket.Estado.Nombre
		response["problema"] = ticket.DescripcionProblema
		response["cancelado"] = ticket.Cancelado
		response["entregado"] = ticket.Entregado
		if ticket.Reparacion != nil {
			response["diagnostico"] = ticket.Reparacion.Diagnostico
		}
		if ticket.Presupuesto != nil {
			response["total_final"] = ticket.Presupuesto.TotalFinal
			response["saldo"] = ticket.Presupuesto.Saldo
			response["pagado"] = ticket.Presupuesto.Pagado
		}
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "get_ticket",
		Response: response,
	})
	return printResponse(finalResp)
}

func executeRevenueReport(ctx context.Context, db *gorm.DB, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	startStr, _ := funcCall.Args["start_date"].(string)
	endStr, _ := funcCall.Args["end_date"].(string)

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)
	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format."
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetRevenueReport(db, start, end)
	if err != nil {
		return "Error calculating the report."
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_revenue_report",
		Response: map[string]interface{}{
			"total_cobrado": report.TotalCobrado,
			"pagos":         report.PagosCount,
			"total_ventas":  report.VentasTotal,
			"ventas":        report.VentasCount,
			"tickets":       report.TicketsCount,
		},
	})
	return printResponse(finalResp)
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
