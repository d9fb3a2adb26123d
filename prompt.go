package ideas

// DefaultPrompt is the instruction sent by sources that talk to a model
// directly instead of going through the idea endpoint.
const DefaultPrompt = `Invent a unique and innovative business idea that leverages AI Agents to solve a real-world problem
or create a new market opportunity. The idea should include:

- A clear description of the problem it addresses.
- How AI Agents will be used (their roles, autonomy, and interaction).
- The target audience or industry.
- A potential monetization model.
- Make it practical yet forward-thinking.`
