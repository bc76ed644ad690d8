package judge

// LLM-as-a-judge prompt templates. Each expects its placeholders to be
// filled with fmt.Sprintf in the order listed.

// routingPrompt: input, expected agent, actual agent.
const routingPrompt = `You are evaluating an AI routing system that directs user queries to specialized agents.

User Query: %s
Expected Agent: %s
Actual Agent: %s

Evaluate whether the routing decision was correct.

Score from 0-1:
- 1.0: Correct routing to expected agent
- 0.5: Reasonable alternative routing (query could go to multiple agents)
- 0.0: Incorrect routing

Respond with ONLY a JSON object:
{"score": <number>, "reasoning": "<brief explanation>"}`

// qualityPrompt: input, response, criteria, expected content.
const qualityPrompt = `You are evaluating an AI assistant's response quality for an enterprise help desk.

User Query: %s
Agent Response: %s
Quality Criteria: %s
Expected Content (if any): %s

Evaluate the response on these dimensions:
1. Relevance: Does it address the user's question?
2. Accuracy: Is the information correct based on expected content?
3. Helpfulness: Does it provide actionable guidance?
4. Professionalism: Is the tone appropriate for enterprise support?

Score from 0-1 (average of all dimensions).

Respond with ONLY a JSON object:
{"score": <number>, "relevance": <0-1>, "accuracy": <0-1>, "helpfulness": <0-1>, "professionalism": <0-1>, "reasoning": "<brief explanation>"}`

// factualityPrompt: input, response, expected content.
const factualityPrompt = `You are checking if an AI response contains specific required information.

User Query: %s
Agent Response: %s
Must Contain: %s

Check if the response contains the expected content (exact or semantic match).

Score:
- 1.0: All expected content present
- 0.5: Partial match
- 0.0: Missing expected content

Respond with ONLY a JSON object:
{"score": <number>, "found": [<list of found items>], "missing": [<list of missing items>], "reasoning": "<brief explanation>"}`
