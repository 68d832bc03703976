// этот код не зависит от приложения,
// и нужен только для ручной проверки приёма заказов через кафку
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type order struct {
	UserID      string `json:"user_id"`
	PaymentMode string `json:"payment_mode"`
	Items       []item `json:"items"`
}

func main() {
	// значения по умолчанию совпадают с config.yaml
	brokerAddress := flag.String("broker", "localhost:9092", "kafka broker address")
	topic := flag.String("topic", "orders", "topic with incoming orders")
	userID := flag.String("user", "", "existing user id (random if empty)")
	productID := flag.String("product", "", "existing product id (random if empty)")
	flag.Parse()

	if *userID == "" {
		*userID = uuid.NewString()
	}
	if *productID == "" {
		*productID = uuid.NewString()
	}

	message, err := json.Marshal(order{
		UserID:      *userID,
		PaymentMode: "cash",
		Items:       []item{{ProductID: *productID, Quantity: 2}},
	})
	if err != nil {
		log.Fatalf("Failed to encode message: %v", err)
	}

	// настройки писателя (producer-а)
	writer := &kafka.Writer{
		Addr:     kafka.TCP(*brokerAddress),
		Topic:    *topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	log.Println("Sending message to Kafka...")
	err = writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(*userID),
			Value: message,
		},
	)
	if err != nil {
		log.Fatalf("Failed to write message: %v", err)
	}
	fmt.Println("Message sent successfully!")
}
